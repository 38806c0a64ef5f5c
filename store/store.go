// Package store defines the abstract read-only Store interface the executor
// depends on (§6.2). The concrete storage backend is an external
// collaborator, out of scope for this module; package storeadapters/... has
// a demonstration implementation.
package store

import "github.com/tanaylab/daf/dtype"

// DepKind distinguishes the kind of artifact a DepKey names (design note:
// "Dependency tracking").
type DepKind int

const (
	DepScalar DepKind = iota
	DepAxis
	DepVector
	DepMatrix
	DepScalarsSet
	DepAxesSet
	DepVectorsSet
	DepMatricesSet
)

// DepKey is a structured cache-invalidation tag. Fields not relevant to Kind
// are left zero.
type DepKey struct {
	Kind     DepKind
	AxisA    string
	AxisB    string
	Name     string
	Relayout bool
}

// DepSet is the set of DepKeys a query touched, unioned across every phrase
// that read the store (§5 "Shared resources").
type DepSet map[DepKey]struct{}

// NewDepSet creates an empty DepSet.
func NewDepSet() DepSet { return DepSet{} }

// Add inserts a key.
func (s DepSet) Add(k DepKey) { s[k] = struct{}{} }

// Union merges other into s in place.
func (s DepSet) Union(other DepSet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Store is the abstract, read-only data access surface the executor
// consumes (§6.2). A Store implementation must provide single-writer /
// multiple-reader concurrency and honor a shared-read reservation for the
// duration of one query evaluation (§5); none of that is visible in this
// interface, which only describes data access.
type Store interface {
	AxesSet() (map[string]struct{}, DepKey)
	ScalarsSet() (map[string]struct{}, DepKey)
	VectorsSet(axis string) (map[string]struct{}, DepKey)
	MatricesSet(a, b string, relayout bool) (map[string]struct{}, DepKey)

	AxisEntries(axis string) ([]string, error)
	AxisLength(axis string) (int, error)
	AxisDict(axis string) (map[string]int, error)

	HasScalar(name string) bool
	HasVector(axis, name string) bool
	HasMatrix(a, b, name string) bool

	// GetScalar returns the scalar value, or hasDefault's default if the
	// scalar is absent and hasDefault is true.
	GetScalar(name string, def interface{}, hasDefault bool) (interface{}, DepKey, error)

	// GetVector returns the named vector over axis, or an all-default
	// vector of length axisLength if absent and hasDefault is true.
	GetVector(axis, name string, def interface{}, hasDefault bool) (dtype.Array, DepKey, error)

	// GetMatrix returns the named matrix with shape
	// AxisLength(a) x AxisLength(b). If relayout is true and only the
	// transposed orientation is stored, the Store materializes (and may
	// cache) the transposed copy; square matrices (a == b) are stored once
	// and relayout is a no-op for them.
	GetMatrix(a, b, name string, def interface{}, hasDefault, relayout bool) (dtype.Matrix, DepKey, error)

	// AxisOfProperty returns the axis a property name implies (by
	// convention, the prefix before the first '.'), used when AsAxis is
	// absent (§4.4.4 step 1).
	AxisOfProperty(name string) (string, bool)
}
