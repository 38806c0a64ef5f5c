package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/ops"
	"github.com/tanaylab/daf/query"
)

func TestParseAxisAndLookupChain(t *testing.T) {
	seq, err := Parse("@ cell : age", nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 2)

	axis, ok := seq.Operations[0].(query.Axis)
	require.True(t, ok)
	assert.Equal(t, "cell", axis.Name)

	lk, ok := seq.Operations[1].(query.Lookup)
	require.True(t, ok)
	assert.Equal(t, "age", lk.Name)
}

func TestParseRepeatedLookupBecomesFetch(t *testing.T) {
	seq, err := Parse("@ cell : partner : age", nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 3)

	_, ok := seq.Operations[1].(query.Lookup)
	require.True(t, ok, "first chained lookup stays a Lookup")

	fetch, ok := seq.Operations[2].(query.Fetch)
	require.True(t, ok, "second chained lookup becomes a Fetch")
	assert.Equal(t, "age", fetch.Name)
}

func TestParseAsAxisDoesNotBreakChain(t *testing.T) {
	seq, err := Parse("@ cell : partner =@ cell : age", nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 4)

	_, ok := seq.Operations[0].(query.Axis)
	require.True(t, ok)
	_, ok = seq.Operations[1].(query.Lookup)
	require.True(t, ok)
	asAxis, ok := seq.Operations[2].(query.AsAxis)
	require.True(t, ok)
	assert.Equal(t, "cell", asAxis.Name)
	fetch, ok := seq.Operations[3].(query.Fetch)
	require.True(t, ok, "lookup following AsAxis inside the same chain becomes Fetch")
	assert.Equal(t, "age", fetch.Name)
}

func TestParseIfMissingAndIfNotDoNotBreakChain(t *testing.T) {
	seq, err := Parse("@ cell : age || 0 ?? -1 : weight", nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 5)

	im, ok := seq.Operations[2].(query.IfMissing)
	require.True(t, ok)
	assert.Equal(t, "0", im.Value)

	ifNot, ok := seq.Operations[3].(query.IfNot)
	require.True(t, ok)
	assert.True(t, ifNot.HasValue)
	assert.Equal(t, "-1", ifNot.Value)

	fetch, ok := seq.Operations[4].(query.Fetch)
	require.True(t, ok, "lookup after IfMissing/IfNot modifiers inside the chain becomes Fetch")
	assert.Equal(t, "weight", fetch.Name)
}

func TestParseIfMissingWithTypeToken(t *testing.T) {
	seq, err := Parse("@ cell : age || 0 Int64", nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 3)
	im, ok := seq.Operations[2].(query.IfMissing)
	require.True(t, ok)
	assert.Equal(t, "0", im.Value)
	assert.Equal(t, "Int64", im.Type)
}

func TestParseIfMissingWithoutTypeThenLookupBecomesFetch(t *testing.T) {
	// The IfMissing default is followed by an operator, not a value, so no
	// type token is read and Type stays empty; since IfMissing doesn't break
	// the chain, the following lookup becomes a Fetch.
	seq, err := Parse(`@ cell : age || 0 : genotype`, nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 4)
	im, ok := seq.Operations[2].(query.IfMissing)
	require.True(t, ok)
	assert.Equal(t, "", im.Type)
	fetch, ok := seq.Operations[3].(query.Fetch)
	require.True(t, ok)
	assert.Equal(t, "genotype", fetch.Name)
}

func TestParseMaskLifecycle(t *testing.T) {
	seq, err := Parse("@ cell [ is_marker = true & secondary = true ]", nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 6)

	begin, ok := seq.Operations[1].(query.BeginMask)
	require.True(t, ok)
	assert.Equal(t, "is_marker", begin.Name)
	assert.False(t, begin.Negated)

	cmp, ok := seq.Operations[2].(query.VectorComparisonOperation)
	require.True(t, ok)
	assert.Equal(t, query.IsEqual, cmp.Kind)
	assert.Equal(t, "true", cmp.Value)

	maskOp, ok := seq.Operations[3].(query.MaskOperation)
	require.True(t, ok)
	assert.Equal(t, "secondary", maskOp.Name)
	assert.Equal(t, query.CombineAnd, maskOp.Combine)

	cmp2, ok := seq.Operations[4].(query.VectorComparisonOperation)
	require.True(t, ok)
	assert.Equal(t, query.IsEqual, cmp2.Kind)

	_, ok = seq.Operations[5].(query.EndMask)
	require.True(t, ok)
}

func TestParseNegatedMask(t *testing.T) {
	seq, err := Parse("@ cell [! is_marker = true ]", nil, OperandNone)
	require.NoError(t, err)
	begin, ok := seq.Operations[1].(query.BeginMask)
	require.True(t, ok)
	assert.True(t, begin.Negated)
}

func TestParseGroupByAndCountBy(t *testing.T) {
	seq, err := Parse("@ cell / type * type", nil, OperandNone)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 3)
	gb, ok := seq.Operations[1].(query.GroupBy)
	require.True(t, ok)
	assert.Equal(t, query.GroupVector, gb.Axis)
	cb, ok := seq.Operations[2].(query.CountBy)
	require.True(t, ok)
	assert.Equal(t, "type", cb.Name)
}

func TestParseReductionRejectsUnknownName(t *testing.T) {
	reg := ops.NewDefaultRegistry()
	_, err := Parse("@ cell :: age >> bogus", reg, OperandNone)
	require.Error(t, err)
}

func TestParseReductionAcceptsRegisteredNameWithParams(t *testing.T) {
	reg := ops.NewDefaultRegistry()
	reg.RegisterReduction(quantileStub{})
	seq, err := Parse(`@ cell :: age >| quantile q "0.5"`, reg, OperandNone)
	require.NoError(t, err)
	red, ok := seq.Operations[2].(query.ReductionOperation)
	require.True(t, ok)
	assert.Equal(t, query.ReduceToColumn, red.Kind)
	assert.Equal(t, "quantile", red.Name)
	require.Len(t, red.Params, 1)
	assert.Equal(t, "q", red.Params[0].Key)
	assert.Equal(t, "0.5", red.Params[0].Value)
}

func TestParseRegisteredOpRejectsRepeatedParameter(t *testing.T) {
	reg := ops.NewRegistry()
	reg.RegisterEltwise(clipStub{})
	_, err := Parse("@ cell : age % clip min 0 min 1", reg, OperandNone)
	require.Error(t, err)
}

func TestParseOperandOnlyShortcut(t *testing.T) {
	seq, err := Parse("cell", nil, OperandAxis)
	require.NoError(t, err)
	require.Len(t, seq.Operations, 1)
	axis, ok := seq.Operations[0].(query.Axis)
	require.True(t, ok)
	assert.Equal(t, "cell", axis.Name)
}

func TestParseOperandOnlyIgnoredForMultiTokenInput(t *testing.T) {
	// operandOnly only applies to a single bare-value query; anything with
	// an explicit operator parses normally.
	seq, err := Parse("@ cell", nil, OperandAxis)
	require.NoError(t, err)
	axis, ok := seq.Operations[0].(query.Axis)
	require.True(t, ok)
	assert.Equal(t, "cell", axis.Name)
}

func TestFormatQueryRoundTrip(t *testing.T) {
	const text = "@ cell : age || 0"
	seq, err := Parse(text, nil, OperandNone)
	require.NoError(t, err)
	reparsed, err := Parse(FormatQuery(seq), nil, OperandNone)
	require.NoError(t, err)
	assert.Equal(t, seq.Operations, reparsed.Operations)
}

func TestParseRejectsValueWhereOperatorExpected(t *testing.T) {
	_, err := Parse("cell : age", nil, OperandNone)
	require.Error(t, err)
}

func TestParseRejectsUnknownNamesKeyword(t *testing.T) {
	_, err := Parse("? bogus", nil, OperandNone)
	require.Error(t, err)
}

// clipStub is a minimal ops.Eltwise used only to exercise the parser's
// registered-operation name/param parsing.
type clipStub struct{}

func (clipStub) Name() string                                  { return "clip" }
func (clipStub) SupportsStrings() bool                          { return false }
func (clipStub) ResultType(input dtype.Dtype) dtype.Dtype       { return input }
func (clipStub) Apply(values dtype.Array, params map[string]string) (dtype.Array, error) {
	return values, nil
}

// quantileStub is a minimal ops.Reduction used only to exercise the parser's
// registered-operation name/param parsing.
type quantileStub struct{}

func (quantileStub) Name() string                            { return "quantile" }
func (quantileStub) SupportsStrings() bool                    { return false }
func (quantileStub) ResultType(input dtype.Dtype) dtype.Dtype { return input }
func (quantileStub) ReduceVector(values dtype.Array, params map[string]string) (interface{}, error) {
	return nil, nil
}
func (quantileStub) ReduceAlong(m dtype.Matrix, rows bool, params map[string]string) (dtype.Array, error) {
	return dtype.Array{}, nil
}
func (quantileStub) EmptyIdentity(input dtype.Dtype) (interface{}, bool) { return nil, false }
