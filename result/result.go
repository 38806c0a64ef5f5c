// Package result implements the §2 Result Finalizer: it takes the terminal
// stack.Element a query run produces and wraps it into one of the four
// public result shapes a caller actually wants, hiding every internal
// executor/stack detail (pending values, entries-axis bookkeeping, deps).
package result

import (
	"fmt"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/stack"
)

// Names is the result of a Names() query: a sorted, deduplicated set of names.
type Names struct {
	Values []string
}

// Scalar is the result of a LookupScalar/reduce-to-scalar query.
type Scalar struct {
	Value interface{}
}

// NamedVector is the result of any query whose terminal element is a
// VectorState: the axis entry names (if the vector is axis-shaped) paired
// with a typed column of values.
type NamedVector struct {
	AxisName string
	Entries  []string
	Values   dtype.Array
}

// NamedMatrix is the result of any query whose terminal element is a
// MatrixState.
type NamedMatrix struct {
	RowAxisName string
	RowEntries  []string
	ColAxisName string
	ColEntries  []string
	Values      dtype.Matrix
}

// Finalize converts a raw stack.Element (as returned by executor.Run) into
// its public shape. Any PendingFinalValues left unresolved on a VectorState
// are flushed first — a caller should never see an internal "pending"
// sentinel.
func Finalize(e stack.Element) (interface{}, error) {
	switch v := e.(type) {
	case stack.NamesState:
		return Names{Values: v.Names}, nil
	case stack.ScalarState:
		return Scalar{Value: v.Value}, nil
	case stack.VectorState:
		return NamedVector{
			AxisName: v.EntriesAxisName,
			Entries:  v.Entries,
			Values:   finalizeValues(v),
		}, nil
	case stack.MatrixState:
		return NamedMatrix{
			RowAxisName: v.Rows.EntriesAxisName,
			RowEntries:  v.Rows.Entries,
			ColAxisName: v.Columns.EntriesAxisName,
			ColEntries:  v.Columns.Entries,
			Values:      v.Values,
		}, nil
	default:
		return nil, fmt.Errorf("result: unrecognized stack element type %T", e)
	}
}

func finalizeValues(v stack.VectorState) dtype.Array {
	if v.PendingFinalValues == nil {
		return v.Values
	}
	bld := dtype.NewBuilder(v.Values.Kind, v.Values.Len())
	for i := 0; i < v.Values.Len(); i++ {
		if v.PendingFinalValues[i] != nil {
			bld.Append(*v.PendingFinalValues[i])
		} else {
			bld.Append(v.Values.At(i))
		}
	}
	return bld.Build()
}
