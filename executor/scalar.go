package executor

import (
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// scalarLookupPhrase implements the primary form of §4.4.2:
// LookupScalar(name) [IfMissing(d)] on an empty stack produces a ScalarState
// from the store's scalar value, or d if absent. The two axis-aligned
// selector variants described in §4.4.2 (vector/matrix lookup narrowed by an
// IsEqual entry selector) are not implemented: no phrase in the table
// handles them (see DESIGN.md "Scalar-selector-variant scope").
func (ex *Executor) scalarLookupPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "scalar lookup (§4.4.2)", Try: func(ctx *phrase.Context) (bool, error) {
		if len(ctx.Stack) != 0 {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		op, ok := rem[0].(query.LookupScalar)
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

		hasDefault := ifMissing != nil
		if !ex.store.HasScalar(op.Name) && !hasDefault {
			return true, missingDefaultErr(ctx.Text, op, "scalar "+op.Name)
		}
		var def interface{}
		if hasDefault {
			def = coerceDefaultValue(ifMissing.Value, ifMissing.Type, guessScalarKindFromLiteral(ifMissing.Value))
		}
		val, depkey, err := ex.store.GetScalar(op.Name, def, hasDefault)
		if err != nil {
			return true, unknownPropertyErr(ctx.Text, op, "", op.Name)
		}
		deps := store.NewDepSet()
		deps.Add(depkey)
		ctx.Stack.Push(stack.NewScalarState(val, deps))
		ctx.Advance(consumed)
		return true, nil
	}}
}
