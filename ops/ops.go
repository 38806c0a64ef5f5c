// Package ops defines the registered-operation interface (§6.3): the
// executor depends only on these two interfaces, never on concrete
// implementations, and the registry is constructed per-executor rather than
// as a process-wide singleton (design note: "No global state").
package ops

import "github.com/tanaylab/daf/dtype"

// Eltwise is a shape-preserving element-wise operation (§6.3).
type Eltwise interface {
	Name() string
	SupportsStrings() bool
	ResultType(input dtype.Dtype) dtype.Dtype
	Apply(values dtype.Array, params map[string]string) (dtype.Array, error)
}

// Reduction is a registered reduction, usable as a scalar reduction, a
// matrix-to-row/column reduction, or a GroupBy aggregator (§6.3).
type Reduction interface {
	Name() string
	SupportsStrings() bool
	ResultType(input dtype.Dtype) dtype.Dtype
	ReduceVector(values dtype.Array, params map[string]string) (interface{}, error)
	// ReduceAlong reduces each row (rows=true) or each column (rows=false)
	// of m into a vector; len(result) == m.Rows when rows, else m.Cols.
	ReduceAlong(m dtype.Matrix, rows bool, params map[string]string) (dtype.Array, error)
	// EmptyIdentity returns the reduction's identity value for empty input
	// and true, or false if no identity is defined (§9 design note: "require
	// IfMissing unless the reduction explicitly declares an empty-input
	// identity").
	EmptyIdentity(input dtype.Dtype) (interface{}, bool)
}

// Registry is a per-executor lookup table of registered operations,
// constructed at executor-construction time and passed in explicitly —
// never a package-level singleton.
type Registry struct {
	eltwise    map[string]Eltwise
	reductions map[string]Reduction
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{eltwise: map[string]Eltwise{}, reductions: map[string]Reduction{}}
}

// RegisterEltwise adds (or replaces) an Eltwise operation under its Name().
func (r *Registry) RegisterEltwise(op Eltwise) { r.eltwise[op.Name()] = op }

// RegisterReduction adds (or replaces) a Reduction operation under its Name().
func (r *Registry) RegisterReduction(op Reduction) { r.reductions[op.Name()] = op }

// LookupEltwise resolves an eltwise operation by name.
func (r *Registry) LookupEltwise(name string) (Eltwise, bool) {
	op, ok := r.eltwise[name]
	return op, ok
}

// LookupReduction resolves a reduction operation by name.
func (r *Registry) LookupReduction(name string) (Reduction, bool) {
	op, ok := r.reductions[name]
	return op, ok
}

// NewDefaultRegistry returns a Registry pre-populated with the builtin
// reductions (Sum, Mean, Min, Max, Count), enough for the seed tests in
// §8.3. No eltwise operation is registered; callers may register more.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterReduction(sumOp{})
	r.RegisterReduction(meanOp{})
	r.RegisterReduction(minOp{})
	r.RegisterReduction(maxOp{})
	r.RegisterReduction(countOp{})
	return r
}
