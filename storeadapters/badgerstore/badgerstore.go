// Package badgerstore is a store.Store implementation backed by
// dgraph-io/badger/v4, grounded on the teacher's datalog/storage.BadgerStore
// (same badger.DefaultOptions + disabled logger + read-heavy tuning, same
// "open once, every access goes through db.View/db.Update" shape). Where the
// teacher indexes datoms under EAVT/AEVT/AVET/VAET/TAEV key prefixes, this
// adapter indexes axes/scalars/vectors/matrices under "a:"/"s:"/"v:"/"m:"
// key prefixes — the domain is different (axes/properties, not triples) but
// the storage idiom is the teacher's.
package badgerstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/store"
)

// Store is a Badger-backed store.Store. It is read-only from the executor's
// point of view; PutAxis/PutVector/PutMatrix/PutScalar populate it.
type Store struct {
	db    *badger.DB
	group singleflight.Group

	mu    sync.RWMutex
	dicts map[string]map[string]int // axis -> name -> position, cached from AxisEntries
}

// Open creates or opens a Badger database at path, tuned the way the
// teacher's NewBadgerStore tunes it for a read-heavy workload.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.MemTableSize = 128 << 20
	opts.BlockCacheSize = 256 << 20
	opts.IndexCacheSize = 100 << 20
	opts.DetectConflicts = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	return &Store{db: db, dicts: map[string]map[string]int{}}, nil
}

// Close releases the underlying Badger database.
func (s *Store) Close() error { return s.db.Close() }

func axisKey(axis string) []byte        { return []byte("a:" + axis) }
func scalarKey(name string) []byte      { return []byte("s:" + name) }
func vectorKey(axis, name string) []byte { return []byte("v:" + axis + ":" + name) }

// matrixStorageKey canonicalizes (a, b) so each pair is stored once; square
// matrices (a == b) trivially canonicalize to themselves (§6.2 "relayout is
// a no-op for them").
func matrixStorageKey(a, b, name string) (key []byte, transposed bool) {
	if a <= b {
		return []byte("m:" + a + ":" + b + ":" + name), false
	}
	return []byte("m:" + b + ":" + a + ":" + name), true
}

// wireArray is the on-disk shape of a dtype.Array: every numeric family is
// widened to its largest same-signedness representation so one gob schema
// covers all twelve dtypes, then narrowed back by dtype.Builder.Append on
// read (the same narrowing Builder already does for boxed IfMissing
// literals, §4.2). No general-purpose serialization library appears
// anywhere in the pack; the teacher hand-rolls its own StorageDatom binary
// codec, so this hand-rolled gob schema follows the same idiom rather than
// reaching outside it.
type wireArray struct {
	Kind    dtype.Dtype
	Bools   []bool
	Ints    []int64
	UInts   []uint64
	Floats  []float64
	Strings []string
}

func encodeArray(a dtype.Array) wireArray {
	w := wireArray{Kind: a.Kind}
	n := a.Len()
	switch a.Kind {
	case dtype.Bool:
		w.Bools = a.Bools()
	case dtype.String:
		w.Strings = a.Strings()
	case dtype.Float32, dtype.Float64:
		w.Floats = make([]float64, n)
		for i := 0; i < n; i++ {
			w.Floats[i] = a.Float64At(i)
		}
	case dtype.UInt8, dtype.UInt16, dtype.UInt32, dtype.UInt64:
		w.UInts = make([]uint64, n)
		for i := 0; i < n; i++ {
			w.UInts[i] = uint64(a.Float64At(i))
		}
	default:
		w.Ints = make([]int64, n)
		for i := 0; i < n; i++ {
			w.Ints[i] = int64(a.Float64At(i))
		}
	}
	return w
}

func decodeArray(w wireArray) dtype.Array {
	n := len(w.Bools) + len(w.Ints) + len(w.UInts) + len(w.Floats) + len(w.Strings)
	bld := dtype.NewBuilder(w.Kind, n)
	switch w.Kind {
	case dtype.Bool:
		for _, v := range w.Bools {
			bld.Append(v)
		}
	case dtype.String:
		for _, v := range w.Strings {
			bld.Append(v)
		}
	case dtype.Float32, dtype.Float64:
		for _, v := range w.Floats {
			bld.Append(v)
		}
	case dtype.UInt8, dtype.UInt16, dtype.UInt32, dtype.UInt64:
		for _, v := range w.UInts {
			bld.Append(v)
		}
	default:
		for _, v := range w.Ints {
			bld.Append(v)
		}
	}
	return bld.Build()
}

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// PutAxis registers an axis's entry names (also invalidating the cached
// name->position dictionary).
func (s *Store) PutAxis(axis string, entries []string) error {
	data, err := gobEncode(entries)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(axisKey(axis), data)
	}); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.dicts, axis)
	s.mu.Unlock()
	return nil
}

// PutScalar stores a scalar property.
func (s *Store) PutScalar(name string, value dtype.Array) error {
	data, err := gobEncode(encodeArray(value))
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error { return txn.Set(scalarKey(name), data) })
}

// PutVector stores a vector property over axis.
func (s *Store) PutVector(axis, name string, values dtype.Array) error {
	data, err := gobEncode(encodeArray(values))
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error { return txn.Set(vectorKey(axis, name), data) })
}

// PutMatrix stores a matrix property shaped (AxisLength(a), AxisLength(b)).
func (s *Store) PutMatrix(a, b, name string, values dtype.Matrix) error {
	key, transposed := matrixStorageKey(a, b, name)
	stored := values
	if transposed {
		stored = values.Transpose()
	}
	data, err := gobEncode(encodeArray(stored.Flat()))
	if err != nil {
		return err
	}
	wrapped := struct {
		Rows, Cols int
		Flat       []byte
	}{stored.Rows, stored.Cols, data}
	payload, err := gobEncode(wrapped)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error { return txn.Set(key, payload) })
}

func (s *Store) axisDict(axis string) (map[string]int, error) {
	s.mu.RLock()
	if d, ok := s.dicts[axis]; ok {
		s.mu.RUnlock()
		return d, nil
	}
	s.mu.RUnlock()

	entries, err := s.AxisEntries(axis)
	if err != nil {
		return nil, err
	}
	dict := make(map[string]int, len(entries))
	for i, e := range entries {
		dict[e] = i
	}
	s.mu.Lock()
	s.dicts[axis] = dict
	s.mu.Unlock()
	return dict, nil
}

// AxisEntries implements store.Store.
func (s *Store) AxisEntries(axis string) ([]string, error) {
	var entries []string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(axisKey(axis))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return gobDecode(val, &entries) })
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("badgerstore: unknown axis %q", axis)
	}
	return entries, err
}

// AxisLength implements store.Store.
func (s *Store) AxisLength(axis string) (int, error) {
	entries, err := s.AxisEntries(axis)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// AxisDict implements store.Store.
func (s *Store) AxisDict(axis string) (map[string]int, error) {
	return s.axisDict(axis)
}

// HasScalar implements store.Store.
func (s *Store) HasScalar(name string) bool {
	return s.keyExists(scalarKey(name))
}

// HasVector implements store.Store.
func (s *Store) HasVector(axis, name string) bool {
	return s.keyExists(vectorKey(axis, name))
}

// HasMatrix implements store.Store.
func (s *Store) HasMatrix(a, b, name string) bool {
	key, _ := matrixStorageKey(a, b, name)
	return s.keyExists(key)
}

func (s *Store) keyExists(key []byte) bool {
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		found = err == nil
		return nil
	})
	return found
}

// GetScalar implements store.Store.
func (s *Store) GetScalar(name string, def interface{}, hasDefault bool) (interface{}, store.DepKey, error) {
	depKey := store.DepKey{Kind: store.DepScalar, Name: name}
	var w wireArray
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(scalarKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return gobDecode(val, &w) })
	})
	if err == badger.ErrKeyNotFound {
		if hasDefault {
			return def, depKey, nil
		}
		return nil, depKey, fmt.Errorf("badgerstore: unknown scalar %q", name)
	}
	if err != nil {
		return nil, depKey, err
	}
	arr := decodeArray(w)
	if arr.Len() == 0 {
		return nil, depKey, fmt.Errorf("badgerstore: scalar %q has no value", name)
	}
	return arr.At(0), depKey, nil
}

// GetVector implements store.Store.
func (s *Store) GetVector(axis, name string, def interface{}, hasDefault bool) (dtype.Array, store.DepKey, error) {
	depKey := store.DepKey{Kind: store.DepVector, AxisA: axis, Name: name}
	var w wireArray
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(vectorKey(axis, name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return gobDecode(val, &w) })
	})
	if err == badger.ErrKeyNotFound {
		if !hasDefault {
			return dtype.Array{}, depKey, fmt.Errorf("badgerstore: unknown vector %q on axis %q", name, axis)
		}
		n, lerr := s.AxisLength(axis)
		if lerr != nil {
			return dtype.Array{}, depKey, lerr
		}
		k := dtype.KindOf(def)
		bld := dtype.NewBuilder(k, n)
		for i := 0; i < n; i++ {
			bld.Append(def)
		}
		return bld.Build(), depKey, nil
	}
	if err != nil {
		return dtype.Array{}, depKey, err
	}
	return decodeArray(w), depKey, nil
}

// GetMatrix implements store.Store. When the requested orientation (a, b)
// differs from the canonical stored one and relayout is requested, the
// transpose is computed once per (a, b, name) key via singleflight so
// concurrent callers asking for the same relayout share the work instead of
// each materializing their own copy (§5: "typical strategy: singleflight-
// style coalescing of concurrent requesters").
func (s *Store) GetMatrix(a, b, name string, def interface{}, hasDefault, relayout bool) (dtype.Matrix, store.DepKey, error) {
	depKey := store.DepKey{Kind: store.DepMatrix, AxisA: a, AxisB: b, Name: name, Relayout: relayout}
	key, transposed := matrixStorageKey(a, b, name)

	type wireMatrix struct {
		Rows, Cols int
		Flat       []byte
	}
	var wm wireMatrix
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return gobDecode(val, &wm) })
	})
	if err == badger.ErrKeyNotFound {
		if !hasDefault {
			return dtype.Matrix{}, depKey, fmt.Errorf("badgerstore: unknown matrix %q on (%q, %q)", name, a, b)
		}
		ra, rerr := s.AxisLength(a)
		if rerr != nil {
			return dtype.Matrix{}, depKey, rerr
		}
		cb, cerr := s.AxisLength(b)
		if cerr != nil {
			return dtype.Matrix{}, depKey, cerr
		}
		k := dtype.KindOf(def)
		bld := dtype.NewBuilder(k, ra*cb)
		for i := 0; i < ra*cb; i++ {
			bld.Append(def)
		}
		return dtype.NewMatrix(ra, cb, bld.Build()), depKey, nil
	}
	if err != nil {
		return dtype.Matrix{}, depKey, err
	}
	var w wireArray
	if derr := gobDecode(wm.Flat, &w); derr != nil {
		return dtype.Matrix{}, depKey, derr
	}
	stored := dtype.NewMatrix(wm.Rows, wm.Cols, decodeArray(w))

	if !transposed {
		return stored, depKey, nil
	}
	if !relayout {
		return dtype.Matrix{}, depKey, fmt.Errorf("badgerstore: matrix %q on (%q, %q) is stored transposed and relayout was not requested", name, a, b)
	}
	result, shErr, _ := s.group.Do(string(key)+":T", func() (interface{}, error) {
		return stored.Transpose(), nil
	})
	if shErr != nil {
		return dtype.Matrix{}, depKey, shErr
	}
	return result.(dtype.Matrix), depKey, nil
}

// AxisOfProperty implements store.Store's naming convention (§4.4.4 step 1):
// the axis is the prefix of name before its first '.', if that prefix names
// a known axis.
func (s *Store) AxisOfProperty(name string) (string, bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", false
	}
	axis := name[:i]
	if _, err := s.AxisLength(axis); err != nil {
		return "", false
	}
	return axis, true
}

// AxesSet implements store.Store by scanning the "a:" key prefix.
func (s *Store) AxesSet() (map[string]struct{}, store.DepKey) {
	return s.scanNames("a:"), store.DepKey{Kind: store.DepAxesSet}
}

// ScalarsSet implements store.Store by scanning the "s:" key prefix.
func (s *Store) ScalarsSet() (map[string]struct{}, store.DepKey) {
	return s.scanNames("s:"), store.DepKey{Kind: store.DepScalarsSet}
}

// VectorsSet implements store.Store by scanning the "v:<axis>:" key prefix.
func (s *Store) VectorsSet(axis string) (map[string]struct{}, store.DepKey) {
	return s.scanNames("v:" + axis + ":"), store.DepKey{Kind: store.DepVectorsSet, AxisA: axis}
}

// MatricesSet implements store.Store by scanning the canonicalized
// "m:<min>:<max>:" key prefix.
func (s *Store) MatricesSet(a, b string, relayout bool) (map[string]struct{}, store.DepKey) {
	prefix := "m:" + a + ":" + b + ":"
	if a > b {
		prefix = "m:" + b + ":" + a + ":"
	}
	return s.scanNames(prefix), store.DepKey{Kind: store.DepMatricesSet, AxisA: a, AxisB: b, Relayout: relayout}
}

func (s *Store) scanNames(prefix string) map[string]struct{} {
	out := map[string]struct{}{}
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			key := string(it.Item().Key()[len(prefix):])
			out[key] = struct{}{}
		}
		return nil
	})
	return out
}
