package dtype

import (
	"fmt"
	"math"
)

// Array is a dense, homogeneously typed column. The underlying Go slice type
// is determined by Kind; Array never exposes it directly so callers go
// through the typed accessors below, keeping the numeric/string polymorphism
// confined to this package (design note: "Numeric/string polymorphism").
type Array struct {
	Kind Dtype
	data interface{}
}

// Len returns the number of elements.
func (a Array) Len() int {
	switch v := a.data.(type) {
	case []bool:
		return len(v)
	case []int8:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	case []uint32:
		return len(v)
	case []uint64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case []string:
		return len(v)
	default:
		return 0
	}
}

func NewBool(v []bool) Array       { return Array{Kind: Bool, data: v} }
func NewInt8(v []int8) Array       { return Array{Kind: Int8, data: v} }
func NewInt16(v []int16) Array     { return Array{Kind: Int16, data: v} }
func NewInt32(v []int32) Array     { return Array{Kind: Int32, data: v} }
func NewInt64(v []int64) Array     { return Array{Kind: Int64, data: v} }
func NewUInt8(v []uint8) Array     { return Array{Kind: UInt8, data: v} }
func NewUInt16(v []uint16) Array   { return Array{Kind: UInt16, data: v} }
func NewUInt32(v []uint32) Array   { return Array{Kind: UInt32, data: v} }
func NewUInt64(v []uint64) Array   { return Array{Kind: UInt64, data: v} }
func NewFloat32(v []float32) Array { return Array{Kind: Float32, data: v} }
func NewFloat64(v []float64) Array { return Array{Kind: Float64, data: v} }
func NewString(v []string) Array   { return Array{Kind: String, data: v} }

// KindOf infers the Dtype of a boxed Go value, for callers (e.g. a
// store.Store implementation building an all-default array from a boxed
// IfMissing default) that only have an interface{} in hand.
func KindOf(v interface{}) Dtype {
	switch v.(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64, int:
		return Int64
	case uint8:
		return UInt8
	case uint16:
		return UInt16
	case uint32:
		return UInt32
	case uint64:
		return UInt64
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		return String
	}
}

// Empty returns a zero-length array of the given dtype.
func Empty(k Dtype) Array {
	switch k {
	case Bool:
		return NewBool(nil)
	case Int8:
		return NewInt8(nil)
	case Int16:
		return NewInt16(nil)
	case Int32:
		return NewInt32(nil)
	case Int64:
		return NewInt64(nil)
	case UInt8:
		return NewUInt8(nil)
	case UInt16:
		return NewUInt16(nil)
	case UInt32:
		return NewUInt32(nil)
	case UInt64:
		return NewUInt64(nil)
	case Float32:
		return NewFloat32(nil)
	case Float64:
		return NewFloat64(nil)
	default:
		return NewString(nil)
	}
}

// Bools returns the underlying slice; panics if Kind != Bool.
func (a Array) Bools() []bool { return a.data.([]bool) }

// Strings returns the underlying slice; panics if Kind != String.
func (a Array) Strings() []string { return a.data.([]string) }

// At returns element i boxed as interface{}.
func (a Array) At(i int) interface{} {
	switch v := a.data.(type) {
	case []bool:
		return v[i]
	case []int8:
		return v[i]
	case []int16:
		return v[i]
	case []int32:
		return v[i]
	case []int64:
		return v[i]
	case []uint8:
		return v[i]
	case []uint16:
		return v[i]
	case []uint32:
		return v[i]
	case []uint64:
		return v[i]
	case []float32:
		return v[i]
	case []float64:
		return v[i]
	case []string:
		return v[i]
	default:
		return nil
	}
}

// Float64At returns element i widened to float64; panics for String/Bool.
func (a Array) Float64At(i int) float64 {
	switch v := a.data.(type) {
	case []int8:
		return float64(v[i])
	case []int16:
		return float64(v[i])
	case []int32:
		return float64(v[i])
	case []int64:
		return float64(v[i])
	case []uint8:
		return float64(v[i])
	case []uint16:
		return float64(v[i])
	case []uint32:
		return float64(v[i])
	case []uint64:
		return float64(v[i])
	case []float32:
		return float64(v[i])
	case []float64:
		return v[i]
	default:
		panic(fmt.Sprintf("dtype: Float64At on non-numeric array %s", a.Kind))
	}
}

// StringAt renders element i as a string, for gather-by-name lookups and
// error messages.
func (a Array) StringAt(i int) string {
	switch v := a.data.(type) {
	case []string:
		return v[i]
	case []bool:
		return fmt.Sprintf("%v", v[i])
	default:
		return fmt.Sprintf("%v", a.At(i))
	}
}

// IsZeroAt reports whether element i is the "empty/zero/false" value for its
// dtype, used by IfNot (§4.4.4 step 5).
func (a Array) IsZeroAt(i int) bool {
	switch v := a.data.(type) {
	case []bool:
		return !v[i]
	case []string:
		return v[i] == ""
	default:
		return a.Float64At(i) == 0
	}
}

// Gather builds a new Array containing data[indices[k]] for each k.
func (a Array) Gather(indices []int) Array {
	switch v := a.data.(type) {
	case []bool:
		out := make([]bool, len(indices))
		for k, i := range indices {
			out[k] = v[i]
		}
		return NewBool(out)
	case []int8:
		return NewInt8(gather(v, indices))
	case []int16:
		return NewInt16(gather(v, indices))
	case []int32:
		return NewInt32(gather(v, indices))
	case []int64:
		return NewInt64(gather(v, indices))
	case []uint8:
		return NewUInt8(gather(v, indices))
	case []uint16:
		return NewUInt16(gather(v, indices))
	case []uint32:
		return NewUInt32(gather(v, indices))
	case []uint64:
		return NewUInt64(gather(v, indices))
	case []float32:
		return NewFloat32(gather(v, indices))
	case []float64:
		return NewFloat64(gather(v, indices))
	case []string:
		return NewString(gather(v, indices))
	default:
		return Empty(a.Kind)
	}
}

func gather[T any](v []T, indices []int) []T {
	out := make([]T, len(indices))
	for k, i := range indices {
		out[k] = v[i]
	}
	return out
}

// ZeroValue returns the zero/empty value of the dtype, boxed.
func ZeroValue(k Dtype) interface{} {
	switch k {
	case Bool:
		return false
	case String:
		return ""
	case Float32:
		return float32(0)
	case Float64:
		return float64(0)
	default:
		return int64(0)
	}
}

// CompareFloat64 returns -1, 0 or 1 for IsLess/IsGreater style comparisons.
// A NaN operand compares equal (0) to every value, so the ordering is not
// total when NaNs are present.
func CompareFloat64(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
