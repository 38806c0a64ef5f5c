package executor

import (
	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// eltwisePhrase implements §4.4.12's shape-preserving form: a registered
// Eltwise operation transforms a VectorState's values in place, keeping its
// axis shape.
func (ex *Executor) eltwisePhrase() phrase.Phrase {
	return phrase.Phrase{Name: "eltwise (§4.4.12)", Try: func(ctx *phrase.Context) (bool, error) {
		v, ok := phrase.VectorMaybeAxis(ctx.Stack.Top())
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		op, ok := rem[0].(query.EltwiseOperation)
		if !ok {
			return false, nil
		}
		eltwise, ok := ex.registry.LookupEltwise(op.Name)
		if !ok {
			return true, parseErr(ctx.Text, op, "UnknownOperation: no registered eltwise operation %q", op.Name)
		}
		v = finalizePendingVS(v)
		if v.Values.Kind == dtype.String && !eltwise.SupportsStrings() {
			return true, unsupportedTypeErr(ctx.Text, op, op.Name)
		}
		result, err := eltwise.Apply(v.Values, paramMap(op.Params))
		if err != nil {
			return true, parseErr(ctx.Text, op, "%v", err)
		}
		next := stack.NewVectorState(v.EntriesAxisName, v.Entries, v.PropertyName, v.PropertyAxisName, v.IsCompletePropertyAxis, result, nil, v.Deps())
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(1)
		return true, nil
	}}
}

func reduceEmptyOrFail(reduction interface {
	EmptyIdentity(dtype.Dtype) (interface{}, bool)
}, resultKind dtype.Dtype, ifMissing *query.IfMissing, op query.Operation, text string) (interface{}, error) {
	if ifMissing != nil {
		return coerceDefaultValue(ifMissing.Value, ifMissing.Type, resultKind), nil
	}
	if ident, ok := reduction.EmptyIdentity(resultKind); ok {
		return ident, nil
	}
	return nil, missingDefaultErr(text, op, "reduction over an empty input")
}

// scalarReductionPhrase implements §4.4.12's scalar form: a registered
// Reduction collapses a VectorState or MatrixState to a ScalarState.
func (ex *Executor) scalarReductionPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "scalar reduction (§4.4.12)", Try: func(ctx *phrase.Context) (bool, error) {
		top := ctx.Stack.Top()
		v, isVector := phrase.VectorMaybeAxis(top)
		m, isMatrix := top.(stack.MatrixState)
		if !isVector && !isMatrix {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		red, ok := rem[0].(query.ReductionOperation)
		if !ok || red.Kind != query.ReduceToScalar {
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

		var input dtype.Array
		var deps store.DepSet
		if isVector {
			v = finalizePendingVS(v)
			input, deps = v.Values, v.Deps()
		} else {
			input, deps = m.Values.Flat(), m.Deps()
		}
		if input.Kind == dtype.String && !reduction.SupportsStrings() {
			return true, unsupportedTypeErr(ctx.Text, red, red.Name)
		}
		resultKind := reduction.ResultType(input.Kind)

		var result interface{}
		if input.Len() == 0 {
			var err error
			result, err = reduceEmptyOrFail(reduction, resultKind, ifMissing, red, ctx.Text)
			if err != nil {
				return true, err
			}
		} else {
			rv, rerr := reduction.ReduceVector(input, paramMap(red.Params))
			if rerr != nil {
				return true, parseErr(ctx.Text, red, "%v", rerr)
			}
			result = rv
		}

		next := stack.NewScalarState(result, deps)
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(consumed)
		return true, nil
	}}
}
