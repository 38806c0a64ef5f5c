// Package stack implements the typed stack element variants of §3.3 and the
// invariants of §3.3/§3.4. Stack elements are created by phrase
// implementations, mutated only by the phrase owning the top-of-stack
// element, and destroyed on pop — the executor never aliases array memory
// it mutates (it copies on first write via dtype.Builder).
package stack

import (
	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/store"
)

// Element is the tagged union of stack states (§3.3).
type Element interface {
	element()
	// Deps returns the store artifacts this element's construction depended
	// on, for cache-invalidation tracking (§5).
	Deps() store.DepSet
}

// NamesState holds a resolved set of names (§4.4.1).
type NamesState struct {
	Names []string
	deps  store.DepSet
}

func (NamesState) element() {}
func (s NamesState) Deps() store.DepSet { return s.deps }

// NewNamesState constructs a NamesState.
func NewNamesState(names []string, deps store.DepSet) NamesState {
	return NamesState{Names: names, deps: deps}
}

// ScalarState holds a single resolved scalar value.
type ScalarState struct {
	Value interface{}
	deps  store.DepSet
}

func (ScalarState) element() {}
func (s ScalarState) Deps() store.DepSet { return s.deps }

// NewScalarState constructs a ScalarState.
func NewScalarState(value interface{}, deps store.DepSet) ScalarState {
	return ScalarState{Value: value, deps: deps}
}

// VectorState represents an axis, or a property fetched over an axis, or a
// derived boolean/numeric vector (§3.3). Invariants (§3.3; CheckInvariants
// checks 1, 2 and the PendingFinalValues half of 3):
//  1. len(Values) == len(Entries) when Entries != nil.
//  2. len(PendingFinalValues) == len(Values) when PendingFinalValues != nil.
//  3. IsCompletePropertyAxis implies PendingFinalValues == nil and Values
//     equals the full axis vector of PropertyAxisName.
type VectorState struct {
	EntriesAxisName        string   // axis the Entries names come from, if any
	Entries                []string // current string "names" this vector is indexed by; nil if not axis-shaped
	PropertyName            string
	PropertyAxisName         string
	IsCompletePropertyAxis bool
	Values                 dtype.Array
	// PendingFinalValues holds, per-position, an already-decided final
	// value to patch in once the chain finishes (§4.4.4 step 3/5), or nil
	// if that position is not yet finalized.
	PendingFinalValues []*interface{}
	deps                store.DepSet
}

func (VectorState) element() {}
func (s VectorState) Deps() store.DepSet { return s.deps }

// NewAxisVectorState builds the VectorState pushed by Axis(A) (§4.4.3):
// entries are the axis's own names, the property is implicitly "name".
func NewAxisVectorState(axis string, entries []string, deps store.DepSet) VectorState {
	return VectorState{
		EntriesAxisName:        axis,
		Entries:                entries,
		PropertyName:           "name",
		PropertyAxisName:       axis,
		IsCompletePropertyAxis: true,
		Values:                 dtype.NewString(append([]string(nil), entries...)),
		deps:                   deps,
	}
}

// NewVectorState builds a VectorState from its exported fields plus a deps
// set; phrases outside this package cannot set deps via struct literal since
// it is unexported.
func NewVectorState(entriesAxisName string, entries []string, propertyName, propertyAxisName string, isComplete bool, values dtype.Array, pending []*interface{}, deps store.DepSet) VectorState {
	return VectorState{
		EntriesAxisName:        entriesAxisName,
		Entries:                entries,
		PropertyName:           propertyName,
		PropertyAxisName:       propertyAxisName,
		IsCompletePropertyAxis: isComplete,
		Values:                 values,
		PendingFinalValues:     pending,
		deps:                   deps,
	}
}

// WithDeps returns a copy of s with its deps replaced.
func (s VectorState) WithDeps(deps store.DepSet) VectorState {
	s.deps = deps
	return s
}

// CheckInvariants returns a description of the first §3.3 invariant the
// VectorState violates, or "" if none; it never panics itself, and callers
// decide how to report it (phrase.Dispatch raises a Bug via qerr.Panic).
func (s VectorState) CheckInvariants() string {
	if s.Entries != nil && len(s.Entries) != s.Values.Len() {
		return "VectorState: len(Values) != len(Entries)"
	}
	if s.PendingFinalValues != nil && len(s.PendingFinalValues) != s.Values.Len() {
		return "VectorState: len(PendingFinalValues) != len(Values)"
	}
	if s.IsCompletePropertyAxis && s.PendingFinalValues != nil {
		return "VectorState: IsCompletePropertyAxis with non-nil PendingFinalValues"
	}
	return ""
}

// Clone makes an owned copy of s suitable for in-place mutation, per §3.4
// ("materializes a new owned value whenever it must mutate").
func (s VectorState) Clone() VectorState {
	out := s
	if s.Entries != nil {
		out.Entries = append([]string(nil), s.Entries...)
	}
	if s.PendingFinalValues != nil {
		out.PendingFinalValues = append([]*interface{}(nil), s.PendingFinalValues...)
	}
	out.deps = store.NewDepSet()
	out.deps.Union(s.deps)
	return out
}

// MatrixState represents a matrix-shaped result (§3.3). Invariant: shape of
// Values equals (len(Rows.Values), len(Columns.Values)).
type MatrixState struct {
	Rows             VectorState
	Columns          VectorState
	PropertyName     string
	PropertyAxisName string // set only for square matrices (Rows.EntriesAxisName == Columns.EntriesAxisName)
	Values           dtype.Matrix
	deps             store.DepSet
}

func (MatrixState) element() {}
func (s MatrixState) Deps() store.DepSet { return s.deps }

// NewMatrixState builds a MatrixState from its exported fields plus a deps set.
func NewMatrixState(rows, columns VectorState, propertyName, propertyAxisName string, values dtype.Matrix, deps store.DepSet) MatrixState {
	return MatrixState{
		Rows:             rows,
		Columns:          columns,
		PropertyName:     propertyName,
		PropertyAxisName: propertyAxisName,
		Values:           values,
		deps:             deps,
	}
}

// WithDeps returns a copy of s with its deps replaced.
func (s MatrixState) WithDeps(deps store.DepSet) MatrixState {
	s.deps = deps
	return s
}

// CheckInvariants reports a violated invariant name, or "" if none.
func (s MatrixState) CheckInvariants() string {
	if s.Values.Rows != s.Rows.Values.Len() || s.Values.Cols != s.Columns.Values.Len() {
		return "MatrixState: Values shape != (Rows.Values.len, Columns.Values.len)"
	}
	return ""
}

// Stack is the executor's working stack of Elements.
type Stack []Element

// Push appends e to the top of the stack.
func (s *Stack) Push(e Element) { *s = append(*s, e) }

// Pop removes and returns the top element; panics if empty (programmer
// error — phrase matching must have already verified the suffix exists).
func (s *Stack) Pop() Element {
	n := len(*s)
	e := (*s)[n-1]
	*s = (*s)[:n-1]
	return e
}

// Top returns the top element without removing it, or nil if empty.
func (s Stack) Top() Element {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// PopN removes and returns the top n elements in bottom-to-top order.
func (s *Stack) PopN(n int) []Element {
	total := len(*s)
	suffix := append([]Element(nil), (*s)[total-n:]...)
	*s = (*s)[:total-n]
	return suffix
}
