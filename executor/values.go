package executor

import (
	"sort"
	"strconv"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/query"
)

// coerceLiteral parses a surface-syntax value token into the dtype a vector
// or scalar of kind k expects (§4.2 values are always plain strings; the
// executor, not the parser, decides what they mean once the target type is
// known).
func coerceLiteral(raw string, k dtype.Dtype) interface{} {
	switch k {
	case dtype.String:
		return raw
	case dtype.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return raw != ""
		}
		return b
	case dtype.Float32, dtype.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return float64(0)
		}
		return f
	default:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	}
}

// coerceDefaultValue resolves an IfMissing(value, type?) pair against a
// dtype that is only known once the property/reduction result type is
// resolved. When typeName is given it wins outright; otherwise fall is used.
func coerceDefaultValue(value, typeName string, fall dtype.Dtype) interface{} {
	k := fall
	if typeName != "" {
		if parsed, ok := dtype.ParseDtype(typeName); ok {
			k = parsed
		}
	}
	return coerceLiteral(value, k)
}

// finalizeArray applies any still-pending IfNot final values into Values,
// used whenever a VectorState stops being a link in a fetch chain (§4.4.6
// "finalize pending finals" and every other terminal consumer).
func finalizeArray(values dtype.Array, pending []*interface{}) dtype.Array {
	if pending == nil {
		return values
	}
	bld := dtype.NewBuilder(values.Kind, values.Len())
	for i := 0; i < values.Len(); i++ {
		if pending[i] != nil {
			bld.Append(*pending[i])
		} else {
			bld.Append(values.At(i))
		}
	}
	return bld.Build()
}

// uniqueSortedStrings returns the distinct values of a, sorted ascending,
// used by GroupBy/CountBy when no axis grouping is requested (§4.4.8/4.4.9).
func uniqueSortedStrings(a dtype.Array) []string {
	seen := map[string]bool{}
	var out []string
	for i := 0; i < a.Len(); i++ {
		s := a.StringAt(i)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// guessScalarKindFromLiteral picks a plausible dtype for a bare IfMissing
// literal with no explicit type token, used only where no existing value of
// the target property is available to infer a dtype from.
func guessScalarKindFromLiteral(raw string) dtype.Dtype {
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return dtype.Int64
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return dtype.Float64
	}
	if _, err := strconv.ParseBool(raw); err == nil {
		return dtype.Bool
	}
	return dtype.String
}

// paramMap converts parsed registered-op parameters into the map shape
// ops.Eltwise/ops.Reduction expect.
func paramMap(params []query.Param) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for _, p := range params {
		out[p.Key] = p.Value
	}
	return out
}

// indexRange builds [0, 1, ..., n-1].
func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
