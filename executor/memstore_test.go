package executor_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/result"
	"github.com/tanaylab/daf/store"
)

func dtypeBools(vs ...bool) dtype.Array { return dtype.NewBool(vs) }

func toInt(v interface{}) int64 {
	bld := dtype.NewBuilder(dtype.Int64, 1)
	bld.Append(v)
	return bld.Build().At(0).(int64)
}

func floats(t *testing.T, nv result.NamedVector) []float64 {
	t.Helper()
	out := make([]float64, nv.Values.Len())
	for i := range out {
		out[i] = nv.Values.Float64At(i)
	}
	return out
}

func int64s(t *testing.T, nv result.NamedVector) []int64 {
	t.Helper()
	out := make([]int64, nv.Values.Len())
	for i := range out {
		out[i] = nv.Values.At(i).(int64)
	}
	return out
}

// memStore is a minimal in-memory store.Store used only by this package's
// tests, built straight from the §8.3-style seed data rather than any
// persistence layer — the teacher exercises its executor against a real
// BadgerStore in its own tests, but a plain map is enough to pin down phrase
// semantics without paying for a database per test.
type memStore struct {
	axes     map[string][]string
	scalars  map[string]dtype.Array
	vectors  map[string]dtype.Array // "axis:name"
	matrices map[string]dtype.Matrix // "a:b:name", a<=b lexicographically
}

func newMemStore() *memStore {
	return &memStore{
		axes:     map[string][]string{},
		scalars:  map[string]dtype.Array{},
		vectors:  map[string]dtype.Array{},
		matrices: map[string]dtype.Matrix{},
	}
}

func (s *memStore) withAxis(name string, entries ...string) *memStore {
	s.axes[name] = entries
	return s
}

func (s *memStore) withScalar(name string, value dtype.Array) *memStore {
	s.scalars[name] = value
	return s
}

func (s *memStore) withVector(axis, name string, values dtype.Array) *memStore {
	s.vectors[axis+":"+name] = values
	return s
}

func (s *memStore) withMatrix(a, b, name string, values dtype.Matrix) *memStore {
	if a > b {
		a, b, values = b, a, values.Transpose()
	}
	s.matrices[a+":"+b+":"+name] = values
	return s
}

func newSeedStore() *memStore {
	return newMemStore().
		withAxis("cell", "c1", "c2", "c3", "c4").
		withAxis("gene", "g1", "g2").
		withAxis("type", "T", "B").
		withVector("cell", "type", dtype.NewString([]string{"T", "T", "B", ""})).
		withVector("cell", "age", dtype.NewInt64([]int64{10, 20, 30, 40})).
		withVector("gene", "is_marker", dtype.NewBool([]bool{true, false})).
		withVector("type", "color", dtype.NewString([]string{"red", "blue"})).
		withMatrix("cell", "gene", "UMIs", dtype.NewMatrix(4, 2, dtype.NewInt64([]int64{1, 3, 5, 7, 2, 4, 6, 8})))
}

func (s *memStore) AxisEntries(axis string) ([]string, error) {
	e, ok := s.axes[axis]
	if !ok {
		return nil, fmt.Errorf("unknown axis %q", axis)
	}
	return e, nil
}

func (s *memStore) AxisLength(axis string) (int, error) {
	e, err := s.AxisEntries(axis)
	if err != nil {
		return 0, err
	}
	return len(e), nil
}

func (s *memStore) AxisDict(axis string) (map[string]int, error) {
	e, err := s.AxisEntries(axis)
	if err != nil {
		return nil, err
	}
	dict := make(map[string]int, len(e))
	for i, name := range e {
		dict[name] = i
	}
	return dict, nil
}

func (s *memStore) HasScalar(name string) bool { _, ok := s.scalars[name]; return ok }
func (s *memStore) HasVector(axis, name string) bool {
	_, ok := s.vectors[axis+":"+name]
	return ok
}
func (s *memStore) HasMatrix(a, b, name string) bool {
	if a > b {
		a, b = b, a
	}
	_, ok := s.matrices[a+":"+b+":"+name]
	return ok
}

func (s *memStore) GetScalar(name string, def interface{}, hasDefault bool) (interface{}, store.DepKey, error) {
	depKey := store.DepKey{Kind: store.DepScalar, Name: name}
	v, ok := s.scalars[name]
	if !ok {
		if hasDefault {
			return def, depKey, nil
		}
		return nil, depKey, fmt.Errorf("unknown scalar %q", name)
	}
	return v.At(0), depKey, nil
}

func (s *memStore) GetVector(axis, name string, def interface{}, hasDefault bool) (dtype.Array, store.DepKey, error) {
	depKey := store.DepKey{Kind: store.DepVector, AxisA: axis, Name: name}
	v, ok := s.vectors[axis+":"+name]
	if !ok {
		if !hasDefault {
			return dtype.Array{}, depKey, fmt.Errorf("unknown vector %q on axis %q", name, axis)
		}
		n, _ := s.AxisLength(axis)
		bld := dtype.NewBuilder(dtype.KindOf(def), n)
		for i := 0; i < n; i++ {
			bld.Append(def)
		}
		return bld.Build(), depKey, nil
	}
	return v, depKey, nil
}

func (s *memStore) GetMatrix(a, b, name string, def interface{}, hasDefault, relayout bool) (dtype.Matrix, store.DepKey, error) {
	depKey := store.DepKey{Kind: store.DepMatrix, AxisA: a, AxisB: b, Name: name, Relayout: relayout}
	lo, hi := a, b
	transposed := false
	if lo > hi {
		lo, hi, transposed = hi, lo, true
	}
	m, ok := s.matrices[lo+":"+hi+":"+name]
	if !ok {
		if !hasDefault {
			return dtype.Matrix{}, depKey, fmt.Errorf("unknown matrix %q on (%q, %q)", name, a, b)
		}
		ra, _ := s.AxisLength(a)
		cb, _ := s.AxisLength(b)
		bld := dtype.NewBuilder(dtype.KindOf(def), ra*cb)
		for i := 0; i < ra*cb; i++ {
			bld.Append(def)
		}
		return dtype.NewMatrix(ra, cb, bld.Build()), depKey, nil
	}
	if transposed {
		if !relayout {
			return dtype.Matrix{}, depKey, fmt.Errorf("matrix %q on (%q, %q) needs relayout", name, a, b)
		}
		return m.Transpose(), depKey, nil
	}
	return m, depKey, nil
}

func (s *memStore) AxisOfProperty(name string) (string, bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		if _, ok := s.axes[name]; ok {
			return name, true
		}
		return "", false
	}
	axis := name[:i]
	_, ok := s.axes[axis]
	return axis, ok
}

func (s *memStore) AxesSet() (map[string]struct{}, store.DepKey) {
	out := map[string]struct{}{}
	for k := range s.axes {
		out[k] = struct{}{}
	}
	return out, store.DepKey{Kind: store.DepAxesSet}
}

func (s *memStore) ScalarsSet() (map[string]struct{}, store.DepKey) {
	out := map[string]struct{}{}
	for k := range s.scalars {
		out[k] = struct{}{}
	}
	return out, store.DepKey{Kind: store.DepScalarsSet}
}

func (s *memStore) VectorsSet(axis string) (map[string]struct{}, store.DepKey) {
	out := map[string]struct{}{}
	prefix := axis + ":"
	for k := range s.vectors {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			out[name] = struct{}{}
		}
	}
	return out, store.DepKey{Kind: store.DepVectorsSet, AxisA: axis}
}

func (s *memStore) MatricesSet(a, b string, relayout bool) (map[string]struct{}, store.DepKey) {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	out := map[string]struct{}{}
	prefix := lo + ":" + hi + ":"
	for k := range s.matrices {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			out[name] = struct{}{}
		}
	}
	return out, store.DepKey{Kind: store.DepMatricesSet, AxisA: a, AxisB: b, Relayout: relayout}
}
