package executor

import (
	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

func groupIndexSet(values dtype.Array, label string) []int {
	var idxs []int
	for k := 0; k < values.Len(); k++ {
		if values.StringAt(k) == label {
			idxs = append(idxs, k)
		}
	}
	return idxs
}

// reduceGroupOrDefault reduces values[idxs] via reduction, falling back to an
// explicit IfMissing default, then the reduction's own empty identity, or
// else raising EmptyGroup (§4.4.9, §9 "require IfMissing unless the
// reduction explicitly declares an empty-input identity").
func reduceGroupOrDefault(reduction interface {
	ReduceVector(dtype.Array, map[string]string) (interface{}, error)
	EmptyIdentity(dtype.Dtype) (interface{}, bool)
}, values dtype.Array, idxs []int, params map[string]string, hasDefault bool, def interface{}, resultKind dtype.Dtype, label string, op query.Operation, text string) (interface{}, error) {
	if len(idxs) == 0 {
		if hasDefault {
			return def, nil
		}
		if ident, ok := reduction.EmptyIdentity(resultKind); ok {
			return ident, nil
		}
		return nil, emptyGroupErr(text, op, label)
	}
	subset := values.Gather(idxs)
	return reduction.ReduceVector(subset, params)
}

// groupByPhrase implements §4.4.9's vector form: GroupBy(g) [IfMissing]
// followed by a required ReduceToScalar ReductionOperation [IfMissing].
func (ex *Executor) groupByPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "group by + reduce, vector (§4.4.9)", Try: func(ctx *phrase.Context) (bool, error) {
		v, ok := phrase.VectorMaybeAxis(ctx.Stack.Top())
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
		gb, ok := rem[i].(query.GroupBy)
		if !ok || gb.Axis != query.GroupVector {
			return false, nil
		}
		i++
		var gbIfMissing *query.IfMissing
		if i < len(rem) {
			if im, ok := rem[i].(query.IfMissing); ok {
				gbIfMissing = &im
				i++
			}
		}
		if i >= len(rem) {
			return false, nil
		}
		red, ok := rem[i].(query.ReductionOperation)
		if !ok || red.Kind != query.ReduceToScalar {
			return false, nil
		}
		i++
		var redIfMissing *query.IfMissing
		if i < len(rem) {
			if im, ok := rem[i].(query.IfMissing); ok {
				redIfMissing = &im
				i++
			}
		}

		v = finalizePendingVS(v)
		g, err := ex.doChainStep(ctx.Text, v, gb.Name, asAxisName, gbIfMissing, gb)
		if err != nil {
			return true, err
		}
		g = finalizePendingVS(g)

		reduction, ok := ex.registry.LookupReduction(red.Name)
		if !ok {
			return true, parseErr(ctx.Text, red, "UnknownOperation: no registered reduction operation %q", red.Name)
		}
		if v.Values.Kind == dtype.String && !reduction.SupportsStrings() {
			return true, unsupportedTypeErr(ctx.Text, red, red.Name)
		}

		groupLabels, groupAxis, hasAxis := axisLabels(ex, g, "")
		params := paramMap(red.Params)
		resultKind := reduction.ResultType(v.Values.Kind)

		var hasRedDefault bool
		var redDefault interface{}
		if redIfMissing != nil {
			hasRedDefault = true
			redDefault = coerceDefaultValue(redIfMissing.Value, redIfMissing.Type, resultKind)
		}

		bld := dtype.NewBuilder(resultKind, len(groupLabels))
		for _, label := range groupLabels {
			idxs := groupIndexSet(g.Values, label)
			rv, rerr := reduceGroupOrDefault(reduction, v.Values, idxs, params, hasRedDefault, redDefault, resultKind, label, red, ctx.Text)
			if rerr != nil {
				return true, rerr
			}
			bld.Append(rv)
		}

		deps := store.NewDepSet()
		deps.Union(v.Deps())
		deps.Union(g.Deps())
		next := stack.NewVectorState(groupAxis, groupLabels, v.PropertyName, groupAxis, hasAxis, bld.Build(), nil, deps)
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(i)
		return true, nil
	}}
}

// groupMatrixPhrase implements §4.4.9's matrix forms: GroupRowsBy +
// ReduceToRow groups the MatrixState's rows and reduces each group's rows
// down to one, per column; GroupColumnsBy + ReduceToColumn is the column
// analogue. The other axis is preserved untouched.
func (ex *Executor) groupMatrixPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "group by + reduce, matrix (§4.4.9)", Try: func(ctx *phrase.Context) (bool, error) {
		m, ok := ctx.Stack.Top().(stack.MatrixState)
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
		gb, ok := rem[i].(query.GroupBy)
		if !ok || (gb.Axis != query.GroupRows && gb.Axis != query.GroupColumns) {
			return false, nil
		}
		i++
		var gbIfMissing *query.IfMissing
		if i < len(rem) {
			if im, ok := rem[i].(query.IfMissing); ok {
				gbIfMissing = &im
				i++
			}
		}
		if i >= len(rem) {
			return false, nil
		}
		wantKind := query.ReduceToRow
		if gb.Axis == query.GroupColumns {
			wantKind = query.ReduceToColumn
		}
		red, ok := rem[i].(query.ReductionOperation)
		if !ok || red.Kind != wantKind {
			return false, nil
		}
		i++
		var redIfMissing *query.IfMissing
		if i < len(rem) {
			if im, ok := rem[i].(query.IfMissing); ok {
				redIfMissing = &im
				i++
			}
		}

		reduction, ok := ex.registry.LookupReduction(red.Name)
		if !ok {
			return true, parseErr(ctx.Text, red, "UnknownOperation: no registered reduction operation %q", red.Name)
		}
		if m.Values.Kind == dtype.String && !reduction.SupportsStrings() {
			return true, unsupportedTypeErr(ctx.Text, red, red.Name)
		}

		groupRows := gb.Axis == query.GroupRows
		groupBase := m.Rows
		if !groupRows {
			groupBase = m.Columns
		}
		groupBase = finalizePendingVS(groupBase)
		g, err := ex.doChainStep(ctx.Text, groupBase, gb.Name, asAxisName, gbIfMissing, gb)
		if err != nil {
			return true, err
		}
		g = finalizePendingVS(g)

		groupLabels, groupAxis, hasAxis := axisLabels(ex, g, "")
		params := paramMap(red.Params)
		resultKind := reduction.ResultType(m.Values.Kind)

		var hasRedDefault bool
		var redDefault interface{}
		if redIfMissing != nil {
			hasRedDefault = true
			redDefault = coerceDefaultValue(redIfMissing.Value, redIfMissing.Type, resultKind)
		}

		groupIdxs := make([][]int, len(groupLabels))
		for gi, label := range groupLabels {
			groupIdxs[gi] = groupIndexSet(g.Values, label)
		}

		var outRows, outCols int
		if groupRows {
			outRows, outCols = len(groupLabels), m.Values.Cols
		} else {
			outRows, outCols = m.Values.Rows, len(groupLabels)
		}
		bld := dtype.NewBuilder(resultKind, outRows*outCols)

		if groupRows {
			for c := 0; c < m.Values.Cols; c++ {
				col := m.Values.Column(c)
				for gi, label := range groupLabels {
					rv, rerr := reduceGroupOrDefault(reduction, col, groupIdxs[gi], params, hasRedDefault, redDefault, resultKind, label, red, ctx.Text)
					if rerr != nil {
						return true, rerr
					}
					bld.Append(rv)
				}
			}
		} else {
			for gi, label := range groupLabels {
				for r := 0; r < m.Values.Rows; r++ {
					row := m.Values.Row(r)
					rv, rerr := reduceGroupOrDefault(reduction, row, groupIdxs[gi], params, hasRedDefault, redDefault, resultKind, label, red, ctx.Text)
					if rerr != nil {
						return true, rerr
					}
					bld.Append(rv)
				}
			}
		}

		matValues := dtype.NewMatrix(outRows, outCols, bld.Build())
		groupedVS := stack.NewVectorState(groupAxis, groupLabels, "name", groupAxis, hasAxis, dtype.NewString(append([]string(nil), groupLabels...)), nil, store.NewDepSet())

		deps := store.NewDepSet()
		deps.Union(m.Deps())
		deps.Union(g.Deps())

		var next stack.MatrixState
		if groupRows {
			next = stack.NewMatrixState(groupedVS, m.Columns, m.PropertyName, "", matValues, deps)
		} else {
			next = stack.NewMatrixState(m.Rows, groupedVS, m.PropertyName, "", matValues, deps)
		}
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(i)
		return true, nil
	}}
}
