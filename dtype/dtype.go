// Package dtype implements the small closed enum of element types that
// vectors and matrices can hold, and narrow conversions at comparison and
// reduction boundaries.
package dtype

import "fmt"

// Dtype is the runtime element type of an Array.
type Dtype int

const (
	Bool Dtype = iota
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	String
)

// String returns the canonical name of the dtype.
func (d Dtype) String() string {
	switch d {
	case Bool:
		return "Bool"
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt8:
		return "UInt8"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case String:
		return "String"
	default:
		return fmt.Sprintf("Dtype(%d)", int(d))
	}
}

// IsNumeric reports whether the dtype participates in arithmetic/ordering.
func (d Dtype) IsNumeric() bool {
	return d != String && d != Bool
}

// ParseDtype maps the name used in `IfMissing(value, type?)` tokens to a Dtype.
func ParseDtype(name string) (Dtype, bool) {
	switch name {
	case "Bool":
		return Bool, true
	case "Int8":
		return Int8, true
	case "Int16":
		return Int16, true
	case "Int32":
		return Int32, true
	case "Int64":
		return Int64, true
	case "UInt8":
		return UInt8, true
	case "UInt16":
		return UInt16, true
	case "UInt32":
		return UInt32, true
	case "UInt64":
		return UInt64, true
	case "Float32":
		return Float32, true
	case "Float64":
		return Float64, true
	case "String":
		return String, true
	default:
		return 0, false
	}
}

// SmallestUnsignedFor returns the smallest unsigned integer dtype whose range
// covers n (used by CountBy, §4.4.8, to size the counts matrix).
func SmallestUnsignedFor(n int) Dtype {
	switch {
	case n <= 0xff:
		return UInt8
	case n <= 0xffff:
		return UInt16
	case n <= 0xffffffff:
		return UInt32
	default:
		return UInt64
	}
}
