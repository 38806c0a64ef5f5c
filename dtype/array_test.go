package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayLenAndAt(t *testing.T) {
	a := NewInt64([]int64{10, 20, 30})
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, int64(20), a.At(1))
	assert.Equal(t, 20.0, a.Float64At(1))
}

func TestArrayStringAt(t *testing.T) {
	assert.Equal(t, "blue", NewString([]string{"red", "blue"}).StringAt(1))
	assert.Equal(t, "true", NewBool([]bool{false, true}).StringAt(1))
	assert.Equal(t, "20", NewInt64([]int64{10, 20}).StringAt(1))
}

func TestArrayIsZeroAt(t *testing.T) {
	assert.True(t, NewString([]string{"", "x"}).IsZeroAt(0))
	assert.False(t, NewString([]string{"", "x"}).IsZeroAt(1))
	assert.True(t, NewBool([]bool{false, true}).IsZeroAt(0))
	assert.True(t, NewInt64([]int64{0, 5}).IsZeroAt(0))
	assert.False(t, NewFloat64([]float64{1.5}).IsZeroAt(0))
}

func TestArrayGather(t *testing.T) {
	a := NewString([]string{"a", "b", "c", "d"})
	got := a.Gather([]int{3, 1, 1})
	assert.Equal(t, []string{"d", "b", "b"}, got.Strings())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Bool, KindOf(true))
	assert.Equal(t, Int64, KindOf(int64(1)))
	assert.Equal(t, Int64, KindOf(3))
	assert.Equal(t, Float64, KindOf(1.5))
	assert.Equal(t, String, KindOf("x"))
}

func TestEmpty(t *testing.T) {
	a := Empty(Float64)
	assert.Equal(t, Float64, a.Kind)
	assert.Equal(t, 0, a.Len())
}

func TestZeroValue(t *testing.T) {
	assert.Equal(t, false, ZeroValue(Bool))
	assert.Equal(t, "", ZeroValue(String))
	assert.Equal(t, int64(0), ZeroValue(Int64))
	assert.Equal(t, float64(0), ZeroValue(Float64))
}

func TestCompareFloat64(t *testing.T) {
	assert.Equal(t, -1, CompareFloat64(1, 2))
	assert.Equal(t, 1, CompareFloat64(2, 1))
	assert.Equal(t, 0, CompareFloat64(1, 1))
}

func TestDtypeStringAndParseRoundTrip(t *testing.T) {
	for _, k := range []Dtype{Bool, Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64, Float32, Float64, String} {
		parsed, ok := ParseDtype(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseDtype("NotADtype")
	assert.False(t, ok)
}

func TestIsNumeric(t *testing.T) {
	assert.False(t, String.IsNumeric())
	assert.False(t, Bool.IsNumeric())
	assert.True(t, Int64.IsNumeric())
	assert.True(t, Float64.IsNumeric())
}

func TestSmallestUnsignedFor(t *testing.T) {
	assert.Equal(t, UInt8, SmallestUnsignedFor(200))
	assert.Equal(t, UInt16, SmallestUnsignedFor(40000))
	assert.Equal(t, UInt32, SmallestUnsignedFor(1 << 20))
}

func TestBuilderCoercesNumericTypes(t *testing.T) {
	bld := NewBuilder(Int64, 2)
	bld.Append(int32(5))
	bld.Append(3.9)
	a := bld.Build()
	assert.Equal(t, int64(5), a.At(0))
	assert.Equal(t, int64(3), a.At(1))
}

func TestBuilderBoolCoercion(t *testing.T) {
	bld := NewBuilder(Bool, 3)
	bld.Append("")
	bld.Append("x")
	bld.Append(0.0)
	a := bld.Build()
	assert.Equal(t, false, a.At(0))
	assert.Equal(t, true, a.At(1))
	assert.Equal(t, false, a.At(2))
}

func TestMatrixAtIsColumnMajor(t *testing.T) {
	// column-major flat layout: col0 = [1,2,3], col1 = [4,5,6]
	m := NewMatrix(3, 2, NewInt64([]int64{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, int64(1), m.At(0, 0))
	assert.Equal(t, int64(3), m.At(2, 0))
	assert.Equal(t, int64(4), m.At(0, 1))
	assert.Equal(t, int64(6), m.At(2, 1))
}

func TestMatrixRowAndColumn(t *testing.T) {
	m := NewMatrix(2, 3, NewInt64([]int64{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []int64{1, 2}, m.Column(0).data.([]int64))
	assert.Equal(t, []int64{1, 3, 5}, m.Row(0).data.([]int64))
}

func TestMatrixTranspose(t *testing.T) {
	m := NewMatrix(2, 3, NewInt64([]int64{1, 2, 3, 4, 5, 6}))
	tr := m.Transpose()
	assert.Equal(t, 3, tr.Rows)
	assert.Equal(t, 2, tr.Cols)
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			assert.Equal(t, m.At(r, c), tr.At(c, r))
		}
	}
}

func TestMatrixGather(t *testing.T) {
	m := NewMatrix(2, 2, NewInt64([]int64{1, 2, 3, 4})) // col0=[1,2] col1=[3,4]
	g := m.Gather([]int{1, 0}, []int{0})
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 1, g.Cols)
	assert.Equal(t, int64(2), g.At(0, 0))
	assert.Equal(t, int64(1), g.At(1, 0))
}
