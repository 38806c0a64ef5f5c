package executor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanaylab/daf/executor"
	"github.com/tanaylab/daf/qerr"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/result"
)

func runSeq(t *testing.T, st *memStore, ops ...query.Operation) interface{} {
	t.Helper()
	ex := executor.New(st, nil)
	seq := &query.Sequence{Operations: ops, Text: "<test>"}
	elem, _, err := ex.Run(seq)
	require.NoError(t, err)
	out, err := result.Finalize(elem)
	require.NoError(t, err)
	return out
}

func runSeqErr(t *testing.T, st *memStore, ops ...query.Operation) error {
	t.Helper()
	ex := executor.New(st, nil)
	seq := &query.Sequence{Operations: ops, Text: "<test>"}
	_, _, err := ex.Run(seq)
	require.Error(t, err)
	return err
}

// seed test 1: @ cell : age >> Sum -> scalar 100.
func TestSeedScalarSum(t *testing.T) {
	st := newSeedStore()
	out := runSeq(t, st,
		query.Axis{Name: "cell"},
		query.Lookup{Name: "age"},
		query.ReductionOperation{Name: "Sum", Kind: query.ReduceToScalar},
	)
	sc, ok := out.(result.Scalar)
	require.True(t, ok)
	assert.EqualValues(t, 100, sc.Value)
}

// seed test 2: @ cell : type : color ?? black -> ["red","red","blue","black"].
func TestSeedFetchChainWithIfNot(t *testing.T) {
	st := newSeedStore()
	out := runSeq(t, st,
		query.Axis{Name: "cell"},
		query.Lookup{Name: "type"},
		query.Fetch{Name: "color"},
		query.IfNot{Value: "black", HasValue: true},
	)
	nv, ok := out.(result.NamedVector)
	require.True(t, ok)
	assert.Equal(t, "cell", nv.AxisName)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, nv.Entries)
	assert.Equal(t, []string{"red", "red", "blue", "black"}, nv.Values.Strings())
}

// seed test 3: @ gene [ is_marker ] -> ["g1"].
func TestSeedMaskFilter(t *testing.T) {
	st := newSeedStore()
	out := runSeq(t, st,
		query.Axis{Name: "gene"},
		query.BeginMask{Name: "is_marker"},
		query.EndMask{},
	)
	nv, ok := out.(result.NamedVector)
	require.True(t, ok)
	assert.Equal(t, []string{"g1"}, nv.Entries)
	assert.Equal(t, []string{"g1"}, nv.Values.Strings())
}

// seed test 4: @ cell @ gene :: UMIs >| Sum -> vector indexed by gene [16, 20].
func TestSeedMatrixReduceToColumn(t *testing.T) {
	st := newSeedStore()
	out := runSeq(t, st,
		query.Axis{Name: "cell"},
		query.Axis{Name: "gene"},
		query.LookupMatrix{Name: "UMIs"},
		query.ReductionOperation{Name: "Sum", Kind: query.ReduceToColumn},
	)
	nv, ok := out.(result.NamedVector)
	require.True(t, ok)
	assert.Equal(t, "gene", nv.AxisName)
	assert.Equal(t, []string{"g1", "g2"}, nv.Entries)
	vals := make([]int64, nv.Values.Len())
	for i := range vals {
		vals[i] = int64(nv.Values.Float64At(i))
	}
	assert.Equal(t, []int64{16, 20}, vals)
}

// seed test 5: @ cell : age / type @ >> Mean || 0, grouped by type, ignoring
// the empty-typed c4 -> [15, 30] for [T, B].
func TestSeedGroupByMean(t *testing.T) {
	st := newSeedStore()
	out := runSeq(t, st,
		query.Axis{Name: "cell"},
		query.Lookup{Name: "age"},
		query.AsAxis{Name: "cell"},
		query.GroupBy{Name: "type", Axis: query.GroupVector},
		query.ReductionOperation{Name: "Mean", Kind: query.ReduceToScalar},
		query.IfMissing{Value: "0"},
	)
	nv, ok := out.(result.NamedVector)
	require.True(t, ok)
	assert.Equal(t, "type", nv.AxisName)
	assert.Equal(t, []string{"T", "B"}, nv.Entries)
	assert.InDeltaSlice(t, []float64{15, 30}, floats(t, nv), 1e-9)
}

// CountBy mechanics: each gene's own is_marker flag cross-tabulated against
// the gene axis. "is_marker" has no axis of its own, so the column order
// falls back to ascending unique values ("false" before "true") rather than
// the literal [true,false] a store-backed axis would give — a deliberate
// scope decision (see DESIGN.md "CountBy non-axis column ordering").
func TestCountByAgainstGeneAxis(t *testing.T) {
	st := newSeedStore()
	out := runSeq(t, st,
		query.Axis{Name: "gene"},
		query.CountBy{Name: "is_marker"},
	)
	nm, ok := out.(result.NamedMatrix)
	require.True(t, ok)
	assert.Equal(t, "gene", nm.RowAxisName)
	assert.Equal(t, []string{"g1", "g2"}, nm.RowEntries)
	assert.Equal(t, []string{"false", "true"}, nm.ColEntries)
	assert.Equal(t, int64(0), toInt(nm.Values.At(0, 0))) // g1, false
	assert.Equal(t, int64(1), toInt(nm.Values.At(0, 1))) // g1, true
	assert.Equal(t, int64(1), toInt(nm.Values.At(1, 0))) // g2, false
	assert.Equal(t, int64(0), toInt(nm.Values.At(1, 1))) // g2, true
}

// boundary: empty axis + reduction without IfMissing -> MissingDefault.
func TestEmptyAxisReductionRequiresIfMissing(t *testing.T) {
	st := newMemStore().withAxis("empty")
	err := runSeqErr(t, st,
		query.Axis{Name: "empty"},
		query.ReductionOperation{Name: "Mean", Kind: query.ReduceToScalar},
	)
	var qe *qerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, qerr.CategoryMissingDefault, qe.Category)
}

// boundary: a mask that matches nothing yields an empty axis, not an error;
// a subsequent lookup over it returns an empty named vector.
func TestMaskAllFalseYieldsEmptyVector(t *testing.T) {
	st := newSeedStore().withVector("gene", "never", dtypeBools(false, false))
	out := runSeq(t, st,
		query.Axis{Name: "gene"},
		query.BeginMask{Name: "never"},
		query.EndMask{},
		query.Lookup{Name: "is_marker"},
	)
	nv, ok := out.(result.NamedVector)
	require.True(t, ok)
	assert.Empty(t, nv.Entries)
	assert.Equal(t, 0, nv.Values.Len())
}

// boundary: a regex comparison against a non-string vector is UnsupportedType.
func TestRegexOnNumericVectorUnsupported(t *testing.T) {
	st := newSeedStore()
	err := runSeqErr(t, st,
		query.Axis{Name: "cell"},
		query.Lookup{Name: "age"},
		query.VectorComparisonOperation{Kind: query.IsMatch, Value: "^1"},
	)
	var qe *qerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, qerr.CategoryUnsupported, qe.Category)
}
