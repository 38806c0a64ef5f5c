package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexOperatorsAndValues(t *testing.T) {
	toks, err := Lex("@ cell : age || 0")
	require.NoError(t, err)
	require.Len(t, toks, 7) // @ cell : age || 0 EOF

	assert.Equal(t, KindOperator, toks[0].Kind)
	assert.Equal(t, "@", toks[0].Value)
	assert.Equal(t, KindValue, toks[1].Kind)
	assert.Equal(t, "cell", toks[1].Value)
	assert.Equal(t, KindOperator, toks[2].Kind)
	assert.Equal(t, ":", toks[2].Value)
	assert.Equal(t, KindOperator, toks[4].Kind)
	assert.Equal(t, "||", toks[4].Value)
	assert.Equal(t, KindEOF, toks[6].Kind)
}

func TestLexPrefersLongestOperator(t *testing.T) {
	toks, err := Lex("::")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "::", toks[0].Value)
}

func TestLexByteOffsetsSpanRawText(t *testing.T) {
	toks, err := Lex("@ cell")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, 0, toks[0].FirstByteOffset)
	assert.Equal(t, 1, toks[0].LastByteOffset)
	assert.Equal(t, "@", toks[0].RawSpan)
	assert.Equal(t, 2, toks[1].FirstByteOffset)
	assert.Equal(t, 6, toks[1].LastByteOffset)
	assert.Equal(t, "cell", toks[1].RawSpan)
}

func TestLexQuotedValueEscapes(t *testing.T) {
	toks, err := Lex(`?? "a \"quoted\" value"`)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, `a "quoted" value`, toks[1].Value)
}

func TestLexQuotedValueInvalidEscape(t *testing.T) {
	_, err := Lex(`"bad \n escape"`)
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestLexUnterminatedQuote(t *testing.T) {
	_, err := Lex(`"never closed`)
	require.Error(t, err)
}

func TestLexBareValueHonorsBackslashEscapeOfOperatorByte(t *testing.T) {
	toks, err := Lex(`: a\:b`)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "a:b", toks[1].Value)
}

func TestLexCommentsAreSkipped(t *testing.T) {
	toks, err := Lex("@ cell # a trailing comment\n: age")
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, "age", toks[3].Value)
}

func TestLexFusesNegationMarkers(t *testing.T) {
	toks, err := Lex("[ ! is_marker")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "[!", toks[0].Value)
}

func TestLexFusesAmpersandBang(t *testing.T) {
	toks, err := Lex("& ! foo")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "&!", toks[0].Value)
}

func TestLexNegativeNumberIsOrdinaryValue(t *testing.T) {
	toks, err := Lex("|| -5")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, KindValue, toks[1].Kind)
	assert.Equal(t, "-5", toks[1].Value)
}
