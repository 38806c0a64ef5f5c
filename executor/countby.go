package executor

import (
	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// resolveGroupAxis decides which axis (if any) should order a group-by key's
// distinct values (§4.4.8/4.4.9): an explicit AsAxis wins outright; a
// pristine Axis() vector already is one; otherwise the store's naming
// convention or a literal axis-name match is tried. Unlike
// axisOfCurrentValues (§4.4.4 step 1), failing to resolve an axis here is
// not an error — it just means "group by the observed values instead".
func (ex *Executor) resolveGroupAxis(v stack.VectorState, asAxisName string) (string, bool) {
	if asAxisName != "" {
		if _, err := ex.store.AxisLength(asAxisName); err == nil {
			return asAxisName, true
		}
		return "", false
	}
	if v.PropertyName == "name" && v.EntriesAxisName != "" && v.IsCompletePropertyAxis {
		return v.EntriesAxisName, true
	}
	if a, ok := ex.store.AxisOfProperty(v.PropertyName); ok {
		if _, err := ex.store.AxisLength(a); err == nil {
			return a, true
		}
	}
	if _, err := ex.store.AxisLength(v.PropertyName); err == nil {
		return v.PropertyName, true
	}
	return "", false
}

func axisLabels(ex *Executor, v stack.VectorState, asAxisName string) (labels []string, axisName string, hasAxis bool) {
	axisName, hasAxis = ex.resolveGroupAxis(v, asAxisName)
	if hasAxis {
		labels, _ = ex.store.AxisEntries(axisName)
		return labels, axisName, true
	}
	return uniqueSortedStrings(v.Values), "", false
}

// countByPhrase implements §4.4.8: cross-tabulate the vector on top of stack
// against a second vector fetched by CountBy.Name into a counts matrix.
func (ex *Executor) countByPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "count by (§4.4.8)", Try: func(ctx *phrase.Context) (bool, error) {
		r, ok := phrase.VectorMaybeAxis(ctx.Stack.Top())
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		i := 0
		asAxisName := ""
		if i < len(rem) {
			if aa, ok := rem[i].(query.AsAxis); ok {
				asAxisName = aa.Name
				i++
			}
		}
		if i >= len(rem) {
			return false, nil
		}
		cb, ok := rem[i].(query.CountBy)
		if !ok {
			return false, nil
		}
		i++

		r = finalizePendingVS(r)
		c, err := ex.doChainStep(ctx.Text, r, cb.Name, "", nil, cb)
		if err != nil {
			return true, err
		}
		c = finalizePendingVS(c)

		if r.Values.Len() != c.Values.Len() {
			return true, shapeMismatchErr(ctx.Text, cb, "ShapeMismatch: CountBy vectors have different lengths (%d vs %d)", r.Values.Len(), c.Values.Len())
		}

		rowLabels, rowAxis, rowHasAxis := axisLabels(ex, r, asAxisName)
		colLabels, colAxis, colHasAxis := axisLabels(ex, c, "")

		rowIdx := make(map[string]int, len(rowLabels))
		for k, l := range rowLabels {
			rowIdx[l] = k
		}
		colIdx := make(map[string]int, len(colLabels))
		for k, l := range colLabels {
			colIdx[l] = k
		}

		kind := dtype.SmallestUnsignedFor(r.Values.Len())
		counts := make([]int64, len(rowLabels)*len(colLabels))
		for k := 0; k < r.Values.Len(); k++ {
			ri, rok := rowIdx[r.Values.StringAt(k)]
			ci, cok := colIdx[c.Values.StringAt(k)]
			if !rok || !cok {
				continue
			}
			counts[ci*len(rowLabels)+ri]++
		}
		bld := dtype.NewBuilder(kind, len(counts))
		for _, v := range counts {
			bld.Append(v)
		}
		matValues := dtype.NewMatrix(len(rowLabels), len(colLabels), bld.Build())

		rowsVS := stack.NewVectorState(rowAxis, rowLabels, "name", rowAxis, rowHasAxis, dtype.NewString(append([]string(nil), rowLabels...)), nil, store.NewDepSet())
		colsVS := stack.NewVectorState(colAxis, colLabels, "name", colAxis, colHasAxis, dtype.NewString(append([]string(nil), colLabels...)), nil, store.NewDepSet())

		deps := store.NewDepSet()
		deps.Union(r.Deps())
		deps.Union(c.Deps())
		mat := stack.NewMatrixState(rowsVS, colsVS, cb.Name, "", matValues, deps)

		ctx.Stack.Pop()
		ctx.Stack.Push(mat)
		ctx.Advance(i)
		return true, nil
	}}
}
