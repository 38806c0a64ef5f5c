package executor

import (
	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

const (
	maskMarker         = "__mask__"
	maskMarkerNegated  = "__mask_negated__"
)

func isMaskMarker(propertyName string) bool {
	return propertyName == maskMarker || propertyName == maskMarkerNegated
}

func negateBool(a dtype.Array) dtype.Array {
	src := a.Bools()
	out := make([]bool, len(src))
	for i, b := range src {
		out[i] = !b
	}
	return dtype.NewBool(out)
}

func combineMasks(lhs, rhs dtype.Array, kind query.MaskCombine) dtype.Array {
	l, r := lhs.Bools(), rhs.Bools()
	out := make([]bool, len(l))
	for i := range l {
		rv := r[i]
		switch kind {
		case query.CombineAnd:
			out[i] = l[i] && rv
		case query.CombineAndNot:
			out[i] = l[i] && !rv
		case query.CombineOr:
			out[i] = l[i] || rv
		case query.CombineOrNot:
			out[i] = l[i] || !rv
		case query.CombineXor:
			out[i] = l[i] != rv
		case query.CombineXorNot:
			out[i] = l[i] != !rv
		}
	}
	return dtype.NewBool(out)
}

// doMaskFetch runs §4.4.4 over base's axis for property p and reduces the
// fetched values to a Boolean "truthy" mask (non-zero/non-empty/true).
func (ex *Executor) doMaskFetch(text string, base stack.VectorState, propName, asAxisName string, ifMissing *query.IfMissing, op query.Operation) (dtype.Array, store.DepSet, error) {
	r, err := ex.doChainStep(text, base, propName, asAxisName, ifMissing, op)
	if err != nil {
		return dtype.Array{}, nil, err
	}
	r = finalizePendingVS(r)
	out := make([]bool, r.Values.Len())
	for i := range out {
		out[i] = !r.Values.IsZeroAt(i)
	}
	return dtype.NewBool(out), r.Deps(), nil
}

// beginMaskPhrase implements the opening half of §4.4.7.
func (ex *Executor) beginMaskPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "begin mask (§4.4.7)", Try: func(ctx *phrase.Context) (bool, error) {
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
		bm, ok := rem[i].(query.BeginMask)
		if !ok {
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
		mask, deps, err := ex.doMaskFetch(ctx.Text, v, bm.Name, asAxisName, ifMissing, bm)
		if err != nil {
			return true, err
		}
		marker := maskMarker
		if bm.Negated {
			marker = maskMarkerNegated
		}
		ctx.Stack.Pop()
		ctx.Stack.Push(v.Clone())
		ctx.Stack.Push(stack.NewVectorState(v.EntriesAxisName, v.Entries, marker, "", false, mask, nil, deps))
		ctx.Advance(i)
		return true, nil
	}}
}

// maskOperationPhrase implements the combinator half of §4.4.7.
func (ex *Executor) maskOperationPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "mask combine (§4.4.7)", Try: func(ctx *phrase.Context) (bool, error) {
		if len(ctx.Stack) < 2 {
			return false, nil
		}
		top, ok := phrase.VectorMaybeAxis(ctx.Stack.Top())
		if !ok || !isMaskMarker(top.PropertyName) {
			return false, nil
		}
		base, ok := phrase.VectorMaybeAxis(ctx.Stack[len(ctx.Stack)-2])
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
		mo, ok := rem[i].(query.MaskOperation)
		if !ok {
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
		rhs, deps, err := ex.doMaskFetch(ctx.Text, base, mo.Name, asAxisName, ifMissing, mo)
		if err != nil {
			return true, err
		}
		combined := combineMasks(top.Values, rhs, mo.Combine)
		merged := store.NewDepSet()
		merged.Union(top.Deps())
		merged.Union(deps)
		ctx.Stack.Pop()
		ctx.Stack.Push(stack.NewVectorState(top.EntriesAxisName, top.Entries, top.PropertyName, "", false, combined, nil, merged))
		ctx.Advance(i)
		return true, nil
	}}
}

// endMaskPhrase implements EndMask: filter the base axis by the accumulated
// mask (inverted when the opening BeginMask was negated).
func (ex *Executor) endMaskPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "end mask (§4.4.7)", Try: func(ctx *phrase.Context) (bool, error) {
		if len(ctx.Stack) < 2 {
			return false, nil
		}
		marker, ok := phrase.VectorMaybeAxis(ctx.Stack.Top())
		if !ok || !isMaskMarker(marker.PropertyName) {
			return false, nil
		}
		base, ok := phrase.VectorMaybeAxis(ctx.Stack[len(ctx.Stack)-2])
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		if _, ok := rem[0].(query.EndMask); !ok {
			return false, nil
		}

		negated := marker.PropertyName == maskMarkerNegated
		keep := make([]int, 0, marker.Values.Len())
		for i := 0; i < marker.Values.Len(); i++ {
			v := !marker.Values.IsZeroAt(i)
			if negated {
				v = !v
			}
			if v {
				keep = append(keep, i)
			}
		}
		ctx.Stack.PopN(2)
		var newEntries []string
		if base.Entries != nil {
			newEntries = make([]string, len(keep))
			for k, idx := range keep {
				newEntries[k] = base.Entries[idx]
			}
		}
		newValues := base.Values.Gather(keep)
		deps := store.NewDepSet()
		deps.Union(base.Deps())
		deps.Union(marker.Deps())
		ctx.Stack.Push(stack.NewVectorState(base.EntriesAxisName, newEntries, base.PropertyName, base.PropertyAxisName, false, newValues, nil, deps))
		ctx.Advance(1)
		return true, nil
	}}
}
