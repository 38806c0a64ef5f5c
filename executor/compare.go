package executor

import (
	"regexp"
	"strconv"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/qerr"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
)

func finalizePendingVS(v stack.VectorState) stack.VectorState {
	if v.PendingFinalValues == nil {
		return v
	}
	values := finalizeArray(v.Values, v.PendingFinalValues)
	return stack.NewVectorState(v.EntriesAxisName, v.Entries, v.PropertyName, v.PropertyAxisName, v.IsCompletePropertyAxis, values, nil, v.Deps())
}

func compareStrings(a, b string, kind query.CompareKind) bool {
	switch kind {
	case query.IsLess:
		return a < b
	case query.IsLessEqual:
		return a <= b
	case query.IsEqual:
		return a == b
	case query.IsNotEqual:
		return a != b
	case query.IsGreater:
		return a > b
	case query.IsGreaterEqual:
		return a >= b
	default:
		return false
	}
}

func compareFloats(a, b float64, kind query.CompareKind) bool {
	c := dtype.CompareFloat64(a, b)
	switch kind {
	case query.IsLess:
		return c < 0
	case query.IsLessEqual:
		return c <= 0
	case query.IsEqual:
		return c == 0
	case query.IsNotEqual:
		return c != 0
	case query.IsGreater:
		return c > 0
	case query.IsGreaterEqual:
		return c >= 0
	default:
		return false
	}
}

// comparisonPhrase implements §4.4.6: a comparison turns a VectorState into
// a same-shape Boolean VectorState, clearing property_name/property_axis_name.
func (ex *Executor) comparisonPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "comparison filter (§4.4.6)", Try: func(ctx *phrase.Context) (bool, error) {
		v, ok := phrase.VectorMaybeAxis(ctx.Stack.Top())
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		op, ok := rem[0].(query.VectorComparisonOperation)
		if !ok {
			return false, nil
		}
		v = finalizePendingVS(v)
		n := v.Values.Len()
		out := make([]bool, n)

		switch op.Kind {
		case query.IsMatch, query.IsNotMatch:
			if v.Values.Kind != dtype.String {
				return true, qerr.New(qerr.CategoryUnsupported, ctx.Text, spanOf(op), "UnsupportedType: %q requires string input", op.Kind.String())
			}
			re, err := regexp.Compile(op.Value)
			if err != nil {
				return true, parseErr(ctx.Text, op, "bad regex %q: %v", op.Value, err)
			}
			for i := 0; i < n; i++ {
				m := re.MatchString(v.Values.StringAt(i))
				if op.Kind == query.IsNotMatch {
					m = !m
				}
				out[i] = m
			}
		default:
			if v.Values.Kind == dtype.String {
				for i := 0; i < n; i++ {
					out[i] = compareStrings(v.Values.StringAt(i), op.Value, op.Kind)
				}
			} else {
				target, err := strconv.ParseFloat(op.Value, 64)
				if err != nil {
					return true, parseErr(ctx.Text, op, "cannot compare numeric vector to %q", op.Value)
				}
				for i := 0; i < n; i++ {
					out[i] = compareFloats(v.Values.Float64At(i), target, op.Kind)
				}
			}
		}

		next := stack.NewVectorState(v.EntriesAxisName, v.Entries, "", "", false, dtype.NewBool(out), nil, v.Deps())
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(1)
		return true, nil
	}}
}
