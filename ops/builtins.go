package ops

import (
	"fmt"
	"math"

	"github.com/tanaylab/daf/dtype"
)

// resultTypeParam lets a query request a specific output dtype for a
// reduction/eltwise via the keyword parameter "type" (e.g. "Sum type Int64"),
// matching the IfMissing(value, type?) convention used elsewhere in the
// surface syntax. Unset (""), the op's natural ResultType rule applies.
func resultTypeParam(params map[string]string, natural dtype.Dtype) dtype.Dtype {
	if t, ok := params["type"]; ok {
		if d, ok := dtype.ParseDtype(t); ok {
			return d
		}
	}
	return natural
}

func naturalNumericResult(input dtype.Dtype) dtype.Dtype {
	if input == dtype.Float32 || input == dtype.Float64 {
		return dtype.Float64
	}
	return dtype.Int64
}

func floats(values dtype.Array) []float64 {
	out := make([]float64, values.Len())
	for i := range out {
		out[i] = values.Float64At(i)
	}
	return out
}

// ---- Sum ----

type sumOp struct{}

func (sumOp) Name() string                      { return "Sum" }
func (sumOp) SupportsStrings() bool             { return false }
func (sumOp) ResultType(d dtype.Dtype) dtype.Dtype { return naturalNumericResult(d) }

func (o sumOp) reduce(vs []float64) float64 {
	var total float64
	for _, v := range vs {
		total += v
	}
	return total
}

func (o sumOp) ReduceVector(values dtype.Array, params map[string]string) (interface{}, error) {
	if values.Kind == dtype.String {
		return nil, fmt.Errorf("UnsupportedType: Sum does not support strings")
	}
	return boxAs(o.reduce(floats(values)), resultTypeParam(params, o.ResultType(values.Kind))), nil
}

func (o sumOp) ReduceAlong(m dtype.Matrix, rows bool, params map[string]string) (dtype.Array, error) {
	if m.Kind == dtype.String {
		return dtype.Array{}, fmt.Errorf("UnsupportedType: Sum does not support strings")
	}
	result := resultTypeParam(params, o.ResultType(m.Kind))
	b := dtype.NewBuilder(result, countAlong(m, rows))
	reduceAlongInto(m, rows, func(vs []float64) { b.Append(o.reduce(vs)) })
	return b.Build(), nil
}

func (sumOp) EmptyIdentity(d dtype.Dtype) (interface{}, bool) {
	return boxAs(0.0, naturalNumericResult(d)), true
}

// ---- Mean ----

type meanOp struct{}

func (meanOp) Name() string                      { return "Mean" }
func (meanOp) SupportsStrings() bool             { return false }
func (meanOp) ResultType(dtype.Dtype) dtype.Dtype { return dtype.Float64 }

func (o meanOp) reduce(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var total float64
	for _, v := range vs {
		total += v
	}
	return total / float64(len(vs))
}

func (o meanOp) ReduceVector(values dtype.Array, params map[string]string) (interface{}, error) {
	if values.Kind == dtype.String {
		return nil, fmt.Errorf("UnsupportedType: Mean does not support strings")
	}
	if values.Len() == 0 {
		return nil, fmt.Errorf("MissingDefault: Mean of empty input has no identity")
	}
	return boxAs(o.reduce(floats(values)), resultTypeParam(params, dtype.Float64)), nil
}

func (o meanOp) ReduceAlong(m dtype.Matrix, rows bool, params map[string]string) (dtype.Array, error) {
	if m.Kind == dtype.String {
		return dtype.Array{}, fmt.Errorf("UnsupportedType: Mean does not support strings")
	}
	result := resultTypeParam(params, dtype.Float64)
	b := dtype.NewBuilder(result, countAlong(m, rows))
	reduceAlongInto(m, rows, func(vs []float64) { b.Append(o.reduce(vs)) })
	return b.Build(), nil
}

func (meanOp) EmptyIdentity(dtype.Dtype) (interface{}, bool) { return nil, false }

// ---- Min / Max ----

type minOp struct{}

func (minOp) Name() string                      { return "Min" }
func (minOp) SupportsStrings() bool             { return false }
func (minOp) ResultType(d dtype.Dtype) dtype.Dtype { return d }

func (minOp) reduce(vs []float64) float64 {
	m := math.Inf(1)
	for _, v := range vs {
		if v < m {
			m = v
		}
	}
	return m
}

func (o minOp) ReduceVector(values dtype.Array, params map[string]string) (interface{}, error) {
	if values.Kind == dtype.String {
		return nil, fmt.Errorf("UnsupportedType: Min does not support strings")
	}
	if values.Len() == 0 {
		return nil, fmt.Errorf("MissingDefault: Min of empty input has no identity")
	}
	return boxAs(o.reduce(floats(values)), resultTypeParam(params, values.Kind)), nil
}

func (o minOp) ReduceAlong(m dtype.Matrix, rows bool, params map[string]string) (dtype.Array, error) {
	if m.Kind == dtype.String {
		return dtype.Array{}, fmt.Errorf("UnsupportedType: Min does not support strings")
	}
	result := resultTypeParam(params, m.Kind)
	b := dtype.NewBuilder(result, countAlong(m, rows))
	reduceAlongInto(m, rows, func(vs []float64) { b.Append(o.reduce(vs)) })
	return b.Build(), nil
}

func (minOp) EmptyIdentity(dtype.Dtype) (interface{}, bool) { return nil, false }

type maxOp struct{}

func (maxOp) Name() string                      { return "Max" }
func (maxOp) SupportsStrings() bool             { return false }
func (maxOp) ResultType(d dtype.Dtype) dtype.Dtype { return d }

func (maxOp) reduce(vs []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}

func (o maxOp) ReduceVector(values dtype.Array, params map[string]string) (interface{}, error) {
	if values.Kind == dtype.String {
		return nil, fmt.Errorf("UnsupportedType: Max does not support strings")
	}
	if values.Len() == 0 {
		return nil, fmt.Errorf("MissingDefault: Max of empty input has no identity")
	}
	return boxAs(o.reduce(floats(values)), resultTypeParam(params, values.Kind)), nil
}

func (o maxOp) ReduceAlong(m dtype.Matrix, rows bool, params map[string]string) (dtype.Array, error) {
	if m.Kind == dtype.String {
		return dtype.Array{}, fmt.Errorf("UnsupportedType: Max does not support strings")
	}
	result := resultTypeParam(params, m.Kind)
	b := dtype.NewBuilder(result, countAlong(m, rows))
	reduceAlongInto(m, rows, func(vs []float64) { b.Append(o.reduce(vs)) })
	return b.Build(), nil
}

func (maxOp) EmptyIdentity(dtype.Dtype) (interface{}, bool) { return nil, false }

// ---- Count ----

type countOp struct{}

func (countOp) Name() string                       { return "Count" }
func (countOp) SupportsStrings() bool              { return true }
func (countOp) ResultType(dtype.Dtype) dtype.Dtype { return dtype.UInt64 }

func (countOp) ReduceVector(values dtype.Array, params map[string]string) (interface{}, error) {
	return boxAs(float64(values.Len()), resultTypeParam(params, dtype.UInt64)), nil
}

func (o countOp) ReduceAlong(m dtype.Matrix, rows bool, params map[string]string) (dtype.Array, error) {
	result := resultTypeParam(params, dtype.UInt64)
	n := m.Cols
	if !rows {
		n = m.Rows
	}
	b := dtype.NewBuilder(result, countAlong(m, rows))
	for i := 0; i < countAlong(m, rows); i++ {
		b.Append(float64(n))
	}
	return b.Build(), nil
}

func (countOp) EmptyIdentity(dtype.Dtype) (interface{}, bool) { return uint64(0), true }

// ---- shared helpers ----

func countAlong(m dtype.Matrix, rows bool) int {
	if rows {
		return m.Rows
	}
	return m.Cols
}

func reduceAlongInto(m dtype.Matrix, rows bool, apply func([]float64)) {
	if rows {
		for r := 0; r < m.Rows; r++ {
			rowArr := m.Row(r)
			apply(floats(rowArr))
		}
		return
	}
	for c := 0; c < m.Cols; c++ {
		colArr := m.Column(c)
		apply(floats(colArr))
	}
}

func boxAs(v float64, d dtype.Dtype) interface{} {
	switch d {
	case dtype.Float32:
		return float32(v)
	case dtype.Float64:
		return v
	case dtype.Bool:
		return v != 0
	case dtype.UInt8:
		return uint8(v)
	case dtype.UInt16:
		return uint16(v)
	case dtype.UInt32:
		return uint32(v)
	case dtype.UInt64:
		return uint64(v)
	case dtype.Int8:
		return int8(v)
	case dtype.Int16:
		return int16(v)
	case dtype.Int32:
		return int32(v)
	default:
		return int64(v)
	}
}
