package executor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/executor"
	"github.com/tanaylab/daf/parser"
	"github.com/tanaylab/daf/result"
)

// Self-referencing Fetch through AsAxis: each cell's partner is another
// cell, and the query follows that reference to read the partner's age.
// Fetch must gather by the partner names rather than short-circuit into a
// direct axis-aligned copy, even though the target axis ("cell") equals the
// entries axis the chain is already indexed by.
func TestParsedSelfReferencingFetchGathersByValue(t *testing.T) {
	st := newMemStore().
		withAxis("cell", "c1", "c2").
		withVector("cell", "partner", dtype.NewString([]string{"c2", "c1"})).
		withVector("cell", "age", dtype.NewInt64([]int64{10, 20}))

	seq, err := parser.Parse("@ cell : partner =@ cell : age", nil, parser.OperandNone)
	require.NoError(t, err)

	ex := executor.New(st, nil)
	elem, _, err := ex.Run(seq)
	require.NoError(t, err)

	out, err := result.Finalize(elem)
	require.NoError(t, err)

	nv, ok := out.(result.NamedVector)
	require.True(t, ok)
	assert.Equal(t, "cell", nv.AxisName)
	assert.Equal(t, []string{"c1", "c2"}, nv.Entries)
	assert.Equal(t, []int64{20, 10}, int64s(t, nv))
}

// A straight lookup chain parsed from real query text, run through the
// actual tokenizer/parser rather than hand-built query.Operation literals,
// and checked against the seed fixture's expected values.
func TestParsedLookupChainMatchesSeedFixture(t *testing.T) {
	st := newSeedStore()
	seq, err := parser.Parse("@ cell : type : color ?? black", nil, parser.OperandNone)
	require.NoError(t, err)

	ex := executor.New(st, nil)
	elem, _, err := ex.Run(seq)
	require.NoError(t, err)

	out, err := result.Finalize(elem)
	require.NoError(t, err)

	nv, ok := out.(result.NamedVector)
	require.True(t, ok)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, nv.Entries)
	assert.Equal(t, []string{"red", "red", "blue", "black"}, nv.Values.Strings())
}
