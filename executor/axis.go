package executor

import (
	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// axisPhrase implements §4.4.3: Axis(A) always pushes, regardless of what is
// already on the stack. A nameless Axis() (bare "@" with no value) pushes a
// placeholder solely so namesPhrase can recognize the "list axis names" form
// via phrase.AxisWithoutName.
func (ex *Executor) axisPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "axis construction (§4.4.3)", Try: func(ctx *phrase.Context) (bool, error) {
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		a, ok := rem[0].(query.Axis)
		if !ok {
			return false, nil
		}
		if a.Name == "" {
			ctx.Stack.Push(stack.NewVectorState("", nil, "name", "", true, dtype.NewString(nil), nil, store.NewDepSet()))
			ctx.Advance(1)
			return true, nil
		}
		entries, err := ex.store.AxisEntries(a.Name)
		if err != nil {
			return true, unknownAxisErr(ctx.Text, a, a.Name)
		}
		deps := store.NewDepSet()
		deps.Add(store.DepKey{Kind: store.DepAxis, AxisA: a.Name})
		ctx.Stack.Push(stack.NewAxisVectorState(a.Name, entries, deps))
		ctx.Advance(1)
		return true, nil
	}}
}
