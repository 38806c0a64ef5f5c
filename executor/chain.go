package executor

import (
	"errors"
	"fmt"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// errNoDefault marks "property absent and no IfMissing was supplied" so
// callers can attach the right span/operation to a MissingDefault error.
var errNoDefault = errors.New("executor: no default supplied")

// axisOfCurrentValues implements §4.4.4 step 1: decide which axis the
// string values currently held by cur are names of. A VectorState that is
// still the pristine result of Axis(A) (property "name", entries ==
// axis A's own names) needs no conversion — its values already are A's
// names. Every other VectorState's values are some other property's data
// and must be mapped to an axis via AsAxis, the store's naming convention,
// or a literal axis match.
func (ex *Executor) axisOfCurrentValues(cur stack.VectorState, asAxisName, text string, op query.Operation) (string, error) {
	if asAxisName != "" {
		if _, err := ex.store.AxisLength(asAxisName); err != nil {
			return "", unknownAxisErr(text, op, asAxisName)
		}
		return asAxisName, nil
	}
	if cur.PropertyName == "name" && cur.EntriesAxisName != "" {
		return cur.EntriesAxisName, nil
	}
	if a, ok := ex.store.AxisOfProperty(cur.PropertyName); ok {
		if _, err := ex.store.AxisLength(a); err == nil {
			return a, nil
		}
	}
	if _, err := ex.store.AxisLength(cur.PropertyName); err == nil {
		return cur.PropertyName, nil
	}
	return "", unknownAxisErr(text, op, cur.PropertyName)
}

// fetchVectorForChain retrieves (axisName, propName), building an
// all-default array from ifMissing when the property is entirely absent.
func (ex *Executor) fetchVectorForChain(axisName, propName string, ifMissing *query.IfMissing) (dtype.Array, store.DepKey, error) {
	if ex.store.HasVector(axisName, propName) {
		return ex.store.GetVector(axisName, propName, nil, false)
	}
	if ifMissing == nil {
		return dtype.Array{}, store.DepKey{}, errNoDefault
	}
	n, err := ex.store.AxisLength(axisName)
	if err != nil {
		return dtype.Array{}, store.DepKey{}, err
	}
	k := dtype.String
	if ifMissing.Type != "" {
		if parsed, ok := dtype.ParseDtype(ifMissing.Type); ok {
			k = parsed
		}
	}
	val := coerceLiteral(ifMissing.Value, k)
	bld := dtype.NewBuilder(k, n)
	for i := 0; i < n; i++ {
		bld.Append(val)
	}
	return bld.Build(), store.DepKey{Kind: store.DepVector, AxisA: axisName, Name: propName}, nil
}

// alignToEntries produces fetched's values, one per entry of cur, either by
// direct axis-aligned copy (when cur's entries already span axisName in
// full, §4.4.4 step 4 "direct axis-aligned copy") or by gathering each
// entry name's position in axisName (step 4 "gather by the current string
// values").
func alignToEntries(ex *Executor, cur stack.VectorState, axisName string, fetched dtype.Array, direct bool) (dtype.Array, error) {
	if direct {
		return fetched, nil
	}
	dict, err := ex.store.AxisDict(axisName)
	if err != nil {
		return dtype.Array{}, err
	}
	zero := dtype.ZeroValue(fetched.Kind)
	n := cur.Values.Len()
	bld := dtype.NewBuilder(fetched.Kind, n)
	for i := 0; i < n; i++ {
		name := cur.Values.StringAt(i)
		if j, ok := dict[name]; ok {
			bld.Append(fetched.At(j))
		} else {
			bld.Append(zero)
		}
	}
	return bld.Build(), nil
}

// doChainStep performs one link of a lookup/fetch chain (§4.4.4 steps 1-4).
// IfNot (step 5) is applied by the caller via applyIfNot since it is optional.
func (ex *Executor) doChainStep(text string, cur stack.VectorState, propName, asAxisName string, ifMissing *query.IfMissing, op query.Operation) (stack.VectorState, error) {
	axisName, err := ex.axisOfCurrentValues(cur, asAxisName, text, op)
	if err != nil {
		return stack.VectorState{}, err
	}
	// Fetch always gathers by the current string values, even when its target
	// axis happens to equal the current entries axis (§4.4.4 step 4): unlike
	// Lookup, which only ever opens a chain directly off a pristine axis
	// vector, Fetch means "go look this value up elsewhere" and must not be
	// short-circuited into a native-order copy.
	_, isFetch := op.(query.Fetch)
	direct := !isFetch && axisName == cur.EntriesAxisName && cur.IsCompletePropertyAxis

	fetched, depkey, ferr := ex.fetchVectorForChain(axisName, propName, ifMissing)
	if ferr == errNoDefault {
		return stack.VectorState{}, missingDefaultErr(text, op, fmt.Sprintf("vector %q on axis %q", propName, axisName))
	} else if ferr != nil {
		return stack.VectorState{}, unknownPropertyErr(text, op, axisName, propName)
	}

	values, aerr := alignToEntries(ex, cur, axisName, fetched, direct)
	if aerr != nil {
		return stack.VectorState{}, unknownAxisErr(text, op, axisName)
	}
	values = finalizeArray(values, cur.PendingFinalValues)

	deps := store.NewDepSet()
	deps.Union(cur.Deps())
	deps.Add(depkey)

	return stack.NewVectorState(cur.EntriesAxisName, cur.Entries, propName, axisName, direct, values, nil, deps), nil
}

// applyIfNot implements §4.4.4 step 5: drop zero/empty/false positions, or
// record a final replacement value pending the end of the chain.
func applyIfNot(v stack.VectorState, op query.IfNot) stack.VectorState {
	n := v.Values.Len()
	if !op.HasValue {
		keep := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if !v.Values.IsZeroAt(i) {
				keep = append(keep, i)
			}
		}
		var entries []string
		if v.Entries != nil {
			entries = make([]string, len(keep))
			for k, i := range keep {
				entries[k] = v.Entries[i]
			}
		}
		return stack.NewVectorState(v.EntriesAxisName, entries, v.PropertyName, v.PropertyAxisName, false, v.Values.Gather(keep), nil, v.Deps())
	}

	pending := make([]*interface{}, n)
	val := coerceLiteral(op.Value, v.Values.Kind)
	for i := 0; i < n; i++ {
		if v.Values.IsZeroAt(i) {
			vv := val
			pending[i] = &vv
		}
	}
	return stack.NewVectorState(v.EntriesAxisName, v.Entries, v.PropertyName, v.PropertyAxisName, false, v.Values, pending, v.Deps())
}

// chainPhrase implements the repeated Lookup/Fetch(p) [IfMissing] [IfNot]
// step of §4.4.4, optionally preceded by AsAxis(X). The outer phrase
// dispatch loop re-enters this phrase for each consecutive link.
func (ex *Executor) chainPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "vector lookup/fetch chain (§4.4.4)", Try: func(ctx *phrase.Context) (bool, error) {
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
		var propName string
		var lookupOp query.Operation
		switch op := rem[i].(type) {
		case query.Lookup:
			propName, lookupOp = op.Name, op
		case query.Fetch:
			propName, lookupOp = op.Name, op
		default:
			return false, nil
		}
		i++
		var ifMissing *query.IfMissing
		if i < len(rem) {
			if im, ok := rem[i].(query.IfMissing); ok {
				ifMissing = &im
				i++
			}
		}
		var ifNot *query.IfNot
		if i < len(rem) {
			if in, ok := rem[i].(query.IfNot); ok {
				ifNot = &in
				i++
			}
		}

		next, err := ex.doChainStep(ctx.Text, v, propName, asAxisName, ifMissing, lookupOp)
		if err != nil {
			return true, err
		}
		if ifNot != nil {
			next = applyIfNot(next, *ifNot)
		}
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(i)
		return true, nil
	}}
}
