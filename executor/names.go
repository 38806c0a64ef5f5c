package executor

import (
	"sort"

	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// namesPhrase implements §4.4.1: the set of names depends on what is
// currently on the stack (nothing, one named axis, two named axes) or on an
// explicit Names(scalars)/Names(axes) override.
func (ex *Executor) namesPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "names (§4.4.1)", Try: func(ctx *phrase.Context) (bool, error) {
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		op, ok := rem[0].(query.Names)
		if !ok {
			return false, nil
		}

		switch op.Kind {
		case query.NamesScalars:
			return ex.pushScalarsSet(ctx)
		case query.NamesAxes:
			return ex.pushAxesSet(ctx)
		}

		switch len(ctx.Stack) {
		case 0:
			return ex.pushScalarsSet(ctx)
		case 1:
			top := ctx.Stack.Top()
			if axis, ok := phrase.AxisWithName(top); ok {
				return ex.pushVectorsSet(ctx, axis)
			}
			if phrase.AxisWithoutName(top) {
				ctx.Stack.Pop()
				return ex.pushAxesSet(ctx)
			}
			return false, nil
		case 2:
			a, ok1 := phrase.AxisWithName(ctx.Stack[0])
			b, ok2 := phrase.AxisWithName(ctx.Stack[1])
			if !ok1 || !ok2 {
				return false, nil
			}
			return ex.pushMatricesSet(ctx, a, b)
		default:
			return false, nil
		}
	}}
}

func (ex *Executor) pushScalarsSet(ctx *phrase.Context) (bool, error) {
	set, depkey := ex.store.ScalarsSet()
	deps := store.NewDepSet()
	deps.Add(depkey)
	ctx.Stack.Push(stack.NewNamesState(sortedKeys(set), deps))
	ctx.Advance(1)
	return true, nil
}

func (ex *Executor) pushAxesSet(ctx *phrase.Context) (bool, error) {
	set, depkey := ex.store.AxesSet()
	deps := store.NewDepSet()
	deps.Add(depkey)
	ctx.Stack.Push(stack.NewNamesState(sortedKeys(set), deps))
	ctx.Advance(1)
	return true, nil
}

func (ex *Executor) pushVectorsSet(ctx *phrase.Context, axis string) (bool, error) {
	top := ctx.Stack.Pop().(stack.VectorState)
	set, depkey := ex.store.VectorsSet(axis)
	deps := store.NewDepSet()
	deps.Union(top.Deps())
	deps.Add(depkey)
	ctx.Stack.Push(stack.NewNamesState(sortedKeys(set), deps))
	ctx.Advance(1)
	return true, nil
}

func (ex *Executor) pushMatricesSet(ctx *phrase.Context, a, b string) (bool, error) {
	popped := ctx.Stack.PopN(2)
	set, depkey := ex.store.MatricesSet(a, b, true)
	deps := store.NewDepSet()
	for _, e := range popped {
		deps.Union(e.Deps())
	}
	deps.Add(depkey)
	ctx.Stack.Push(stack.NewNamesState(sortedKeys(set), deps))
	ctx.Advance(1)
	return true, nil
}
