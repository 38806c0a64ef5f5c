package dtype

import "fmt"

// Builder accumulates boxed values into a typed Array. Used wherever the
// executor must materialize a new owned value instead of mutating borrowed
// store data (§3.4).
type Builder struct {
	kind Dtype
	b    []bool
	i8   []int8
	i16  []int16
	i32  []int32
	i64  []int64
	u8   []uint8
	u16  []uint16
	u32  []uint32
	u64  []uint64
	f32  []float32
	f64  []float64
	s    []string
}

// NewBuilder creates a Builder for the given dtype with the given capacity hint.
func NewBuilder(k Dtype, capacity int) *Builder {
	bld := &Builder{kind: k}
	switch k {
	case Bool:
		bld.b = make([]bool, 0, capacity)
	case Int8:
		bld.i8 = make([]int8, 0, capacity)
	case Int16:
		bld.i16 = make([]int16, 0, capacity)
	case Int32:
		bld.i32 = make([]int32, 0, capacity)
	case Int64:
		bld.i64 = make([]int64, 0, capacity)
	case UInt8:
		bld.u8 = make([]uint8, 0, capacity)
	case UInt16:
		bld.u16 = make([]uint16, 0, capacity)
	case UInt32:
		bld.u32 = make([]uint32, 0, capacity)
	case UInt64:
		bld.u64 = make([]uint64, 0, capacity)
	case Float32:
		bld.f32 = make([]float32, 0, capacity)
	case Float64:
		bld.f64 = make([]float64, 0, capacity)
	case String:
		bld.s = make([]string, 0, capacity)
	}
	return bld
}

// Append appends one boxed value, converting numeric types as needed.
func (bld *Builder) Append(v interface{}) {
	switch bld.kind {
	case Bool:
		bld.b = append(bld.b, toBool(v))
	case Int8:
		bld.i8 = append(bld.i8, int8(toInt64(v)))
	case Int16:
		bld.i16 = append(bld.i16, int16(toInt64(v)))
	case Int32:
		bld.i32 = append(bld.i32, int32(toInt64(v)))
	case Int64:
		bld.i64 = append(bld.i64, toInt64(v))
	case UInt8:
		bld.u8 = append(bld.u8, uint8(toInt64(v)))
	case UInt16:
		bld.u16 = append(bld.u16, uint16(toInt64(v)))
	case UInt32:
		bld.u32 = append(bld.u32, uint32(toInt64(v)))
	case UInt64:
		bld.u64 = append(bld.u64, uint64(toInt64(v)))
	case Float32:
		bld.f32 = append(bld.f32, float32(toFloat64(v)))
	case Float64:
		bld.f64 = append(bld.f64, toFloat64(v))
	case String:
		bld.s = append(bld.s, fmt.Sprintf("%v", v))
	}
}

// Build finalizes the Builder into an Array.
func (bld *Builder) Build() Array {
	switch bld.kind {
	case Bool:
		return NewBool(bld.b)
	case Int8:
		return NewInt8(bld.i8)
	case Int16:
		return NewInt16(bld.i16)
	case Int32:
		return NewInt32(bld.i32)
	case Int64:
		return NewInt64(bld.i64)
	case UInt8:
		return NewUInt8(bld.u8)
	case UInt16:
		return NewUInt16(bld.u16)
	case UInt32:
		return NewUInt32(bld.u32)
	case UInt64:
		return NewUInt64(bld.u64)
	case Float32:
		return NewFloat32(bld.f32)
	case Float64:
		return NewFloat64(bld.f64)
	default:
		return NewString(bld.s)
	}
}

func toBool(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	default:
		return toFloat64(v) != 0
	}
}

func toInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return int64(x)
	case float64:
		return int64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}
