package executor

import (
	"fmt"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

func indicesFor(entries []string, dict map[string]int) []int {
	out := make([]int, len(entries))
	for i, name := range entries {
		out[i] = dict[name]
	}
	return out
}

// lookupMatrixPhrase implements §4.4.10: two axis-typed VectorStates plus
// LookupMatrix(name) produce a MatrixState. Relayout is requested only for
// non-square axis pairs; the store refuses relayout for a square matrix, so
// rows and columns sharing one axis are always fetched in their native
// layout.
func (ex *Executor) lookupMatrixPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "matrix lookup (§4.4.10)", Try: func(ctx *phrase.Context) (bool, error) {
		if len(ctx.Stack) < 2 {
			return false, nil
		}
		cols, ok := phrase.VectorMaybeAxis(ctx.Stack.Top())
		if !ok {
			return false, nil
		}
		rows, ok := phrase.VectorMaybeAxis(ctx.Stack[len(ctx.Stack)-2])
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		lm, ok := rem[0].(query.LookupMatrix)
		if !ok {
			return false, nil
		}
		consumed := 1
		var ifMissing *query.IfMissing
		if len(rem) > 1 {
			if im, ok := rem[1].(query.IfMissing); ok {
				ifMissing = &im
				consumed = 2
			}
		}

		rowsAxis, err := ex.axisOfCurrentValues(rows, "", ctx.Text, lm)
		if err != nil {
			return true, err
		}
		colsAxis, err := ex.axisOfCurrentValues(cols, "", ctx.Text, lm)
		if err != nil {
			return true, err
		}

		relayout := rowsAxis != colsAxis
		hasDefault := ifMissing != nil
		if !ex.store.HasMatrix(rowsAxis, colsAxis, lm.Name) && !hasDefault {
			return true, missingDefaultErr(ctx.Text, lm, fmt.Sprintf("matrix %q on (%q, %q)", lm.Name, rowsAxis, colsAxis))
		}
		var def interface{}
		if hasDefault {
			def = coerceDefaultValue(ifMissing.Value, ifMissing.Type, dtype.Float64)
		}
		full, depkey, gerr := ex.store.GetMatrix(rowsAxis, colsAxis, lm.Name, def, hasDefault, relayout)
		if gerr != nil {
			return true, unknownPropertyErr(ctx.Text, lm, rowsAxis+","+colsAxis, lm.Name)
		}

		values := full
		if !rows.IsCompletePropertyAxis || !cols.IsCompletePropertyAxis {
			rowDict, rerr := ex.store.AxisDict(rowsAxis)
			if rerr != nil {
				return true, unknownAxisErr(ctx.Text, lm, rowsAxis)
			}
			colDict, cerr := ex.store.AxisDict(colsAxis)
			if cerr != nil {
				return true, unknownAxisErr(ctx.Text, lm, colsAxis)
			}
			values = full.Gather(indicesFor(rows.Entries, rowDict), indicesFor(cols.Entries, colDict))
		}

		deps := store.NewDepSet()
		deps.Union(rows.Deps())
		deps.Union(cols.Deps())
		deps.Add(depkey)

		propAxis := ""
		if rowsAxis == colsAxis {
			propAxis = rowsAxis
		}
		mat := stack.NewMatrixState(rows, cols, lm.Name, propAxis, values, deps)
		ctx.Stack.PopN(2)
		ctx.Stack.Push(mat)
		ctx.Advance(consumed)
		return true, nil
	}}
}

// reduceMatrixPhrase implements §4.4.11: ReduceToRow/ReduceToColumn turns a
// MatrixState into a VectorState over the axis that survives the reduction.
// An empty input dimension requires IfMissing unless the reduction declares
// an empty-input identity (§9).
func (ex *Executor) reduceMatrixPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "matrix reduction (§4.4.11)", Try: func(ctx *phrase.Context) (bool, error) {
		m, ok := ctx.Stack.Top().(stack.MatrixState)
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		red, ok := rem[0].(query.ReductionOperation)
		if !ok || (red.Kind != query.ReduceToRow && red.Kind != query.ReduceToColumn) {
			return false, nil
		}
		consumed := 1
		var ifMissing *query.IfMissing
		if len(rem) > 1 {
			if im, ok := rem[1].(query.IfMissing); ok {
				ifMissing = &im
				consumed = 2
			}
		}

		reduction, ok := ex.registry.LookupReduction(red.Name)
		if !ok {
			return true, parseErr(ctx.Text, red, "UnknownOperation: no registered reduction operation %q", red.Name)
		}
		if m.Values.Kind == dtype.String && !reduction.SupportsStrings() {
			return true, unsupportedTypeErr(ctx.Text, red, red.Name)
		}

		rows := red.Kind == query.ReduceToRow // ReduceToRow combines each row's values, surviving the Rows axis
		params := paramMap(red.Params)
		resultKind := reduction.ResultType(m.Values.Kind)

		n := m.Values.Cols
		survivor := m.Columns
		if rows {
			n = m.Values.Rows
			survivor = m.Rows
		}

		var result dtype.Array
		if n == 0 {
			bld := dtype.NewBuilder(resultKind, 0)
			result = bld.Build()
		} else if m.Values.Rows == 0 || m.Values.Cols == 0 {
			if ifMissing == nil {
				if _, ok := reduction.EmptyIdentity(resultKind); !ok {
					return true, missingDefaultErr(ctx.Text, red, fmt.Sprintf("reduction %q over an empty axis", red.Name))
				}
			}
			def := interface{}(nil)
			if ifMissing != nil {
				def = coerceDefaultValue(ifMissing.Value, ifMissing.Type, resultKind)
			} else {
				def, _ = reduction.EmptyIdentity(resultKind)
			}
			bld := dtype.NewBuilder(resultKind, n)
			for i := 0; i < n; i++ {
				bld.Append(def)
			}
			result = bld.Build()
		} else {
			rv, rerr := reduction.ReduceAlong(m.Values, rows, params)
			if rerr != nil {
				return true, parseErr(ctx.Text, red, "%v", rerr)
			}
			result = rv
		}

		deps := store.NewDepSet()
		deps.Union(m.Deps())
		next := stack.NewVectorState(survivor.EntriesAxisName, survivor.Entries, red.Name, survivor.PropertyAxisName, survivor.IsCompletePropertyAxis, result, nil, deps)
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(consumed)
		return true, nil
	}}
}
