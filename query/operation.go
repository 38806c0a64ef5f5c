// Package query defines the typed union of parseable query operations
// (§3.2) and the surface-syntax operator table (§6.1).
package query

import "fmt"

// ReductionKind distinguishes how a reduction operation is applied.
type ReductionKind int

const (
	ReduceToScalar ReductionKind = iota
	ReduceToRow
	ReduceToColumn
)

// CompareKind enumerates the comparison operators of §3.2/§6.1.
type CompareKind int

const (
	IsLess CompareKind = iota
	IsLessEqual
	IsEqual
	IsNotEqual
	IsGreater
	IsGreaterEqual
	IsMatch
	IsNotMatch
)

func (c CompareKind) String() string {
	switch c {
	case IsLess:
		return "<"
	case IsLessEqual:
		return "<="
	case IsEqual:
		return "="
	case IsNotEqual:
		return "!="
	case IsGreater:
		return ">"
	case IsGreaterEqual:
		return ">="
	case IsMatch:
		return "~"
	case IsNotMatch:
		return "!~"
	default:
		return fmt.Sprintf("CompareKind(%d)", int(c))
	}
}

// MaskCombine enumerates the mask-merge operators of §3.2/§6.1.
type MaskCombine int

const (
	CombineAnd MaskCombine = iota
	CombineAndNot
	CombineOr
	CombineOrNot
	CombineXor
	CombineXorNot
)

// Operation is the tagged union of parseable query operations (§3.2). Every
// concrete type below implements it via the unexported operation() marker
// method, the same "sealed interface" idiom the teacher uses for
// query.Pattern / query.Clause.
type Operation interface {
	operation()
	// Span is the token byte-range this operation was parsed from, used for
	// InvalidPhrase caret markers (§4.6).
	Span() (start, end int)
	String() string
}

// Base carries the source span shared by every concrete Operation.
type Base struct {
	StartOffset int
	EndOffset   int
}

func (b Base) Span() (int, int) { return b.StartOffset, b.EndOffset }

// Axis declares an axis in the result shape. Name is empty only for a bare
// "@" with no following value; the executor pushes a nameless placeholder
// for it, used by a following Names to list the axis names.
type Axis struct {
	Base
	Name string
}

func (Axis) operation() {}
func (a Axis) String() string {
	return fmt.Sprintf("@ %s", a.Name)
}

// LookupScalar looks up a scalar property by name.
type LookupScalar struct {
	Base
	Name string
}

func (LookupScalar) operation() {}
func (o LookupScalar) String() string {
	return fmt.Sprintf(". %s", o.Name)
}

// Lookup looks up a vector property by name at the current axis shape. The
// first Lookup/Fetch in a chain is always parsed as Lookup.
type Lookup struct {
	Base
	Name string
}

func (Lookup) operation() {}
func (o Lookup) String() string {
	return fmt.Sprintf(": %s", o.Name)
}

// Fetch continues a Lookup chain: it treats the current vector's
// string-valued entries as names in another axis and looks up a further
// property there (§4.4.4). The surface token is identical to Lookup's
// (":"); the parser emits Fetch for every ":" after the first in an
// uninterrupted chain (AsAxis, IfMissing and IfNot do not interrupt it).
type Fetch struct {
	Base
	Name string
}

func (Fetch) operation() {}
func (o Fetch) String() string {
	return fmt.Sprintf(": %s", o.Name)
}

// LookupMatrix looks up a matrix property by name.
type LookupMatrix struct {
	Base
	Name string
}

func (LookupMatrix) operation() {}
func (o LookupMatrix) String() string {
	return fmt.Sprintf(":: %s", o.Name)
}

// IfMissing supplies a default for an absent property; Type is optional
// (empty string means "infer from context").
type IfMissing struct {
	Base
	Value string
	Type  string
}

func (IfMissing) operation() {}
func (o IfMissing) String() string {
	if o.Type == "" {
		return fmt.Sprintf("|| %s", o.Value)
	}
	return fmt.Sprintf("|| %s %s", o.Value, o.Type)
}

// IfNot supplies handling for false-ish values during a lookup chain. Value
// == "" with HasValue == false means "drop the position" rather than
// "substitute empty string".
type IfNot struct {
	Base
	Value    string
	HasValue bool
}

func (IfNot) operation() {}
func (o IfNot) String() string {
	if !o.HasValue {
		return "??"
	}
	return fmt.Sprintf("?? %s", o.Value)
}

// AsAxis declares that the current string-valued vector/matrix entries are
// names in Name (or, if Name == "", the axis inferred from the property name).
type AsAxis struct {
	Base
	Name string
}

func (AsAxis) operation() {}
func (o AsAxis) String() string {
	if o.Name == "" {
		return "=@"
	}
	return fmt.Sprintf("=@ %s", o.Name)
}

// NamesKind selects which kind of name-set Names(kind?) requests.
type NamesKind int

const (
	NamesAuto NamesKind = iota // inferred from stack shape, §4.4.1
	NamesScalars
	NamesAxes
	NamesVectors
	NamesMatrices
)

// Names requests the set of names for the current stack shape.
type Names struct {
	Base
	Kind NamesKind
}

func (Names) operation() {}
func (o Names) String() string {
	switch o.Kind {
	case NamesScalars:
		return "? scalars"
	case NamesAxes:
		return "? axes"
	default:
		return "?"
	}
}

// CountBy cross-tabulates the current vector against a second vector fetched
// by Name into a counts matrix (§4.4.8).
type CountBy struct {
	Base
	Name string
}

func (CountBy) operation() {}
func (o CountBy) String() string { return fmt.Sprintf("* %s", o.Name) }

// GroupByAxis selects which axis a grouping/reduction op targets.
type GroupByAxis int

const (
	GroupVector GroupByAxis = iota // plain GroupBy on a VectorState
	GroupRows                      // GroupRowsBy on a MatrixState
	GroupColumns                   // GroupColumnsBy on a MatrixState
)

// GroupBy aggregates along a group key fetched by Name (§4.4.9).
type GroupBy struct {
	Base
	Name string
	Axis GroupByAxis
}

func (GroupBy) operation() {}
func (o GroupBy) String() string {
	switch o.Axis {
	case GroupRows:
		return fmt.Sprintf("-/ %s", o.Name)
	case GroupColumns:
		return fmt.Sprintf("|/ %s", o.Name)
	default:
		return fmt.Sprintf("/ %s", o.Name)
	}
}

// ReductionOperation applies a registered reduction (§6.3), either to a
// scalar, or along a matrix axis (ReduceToRow/ReduceToColumn).
type ReductionOperation struct {
	Base
	Name   string
	Kind   ReductionKind
	Params []Param
}

func (ReductionOperation) operation() {}
func (o ReductionOperation) String() string {
	switch o.Kind {
	case ReduceToRow:
		return formatRegisteredOp(">-", o.Name, o.Params)
	case ReduceToColumn:
		return formatRegisteredOp(">|", o.Name, o.Params)
	default:
		return formatRegisteredOp(">>", o.Name, o.Params)
	}
}

// EltwiseOperation applies a registered shape-preserving element-wise op.
type EltwiseOperation struct {
	Base
	Name   string
	Params []Param
}

func (EltwiseOperation) operation() {}
func (o EltwiseOperation) String() string { return formatRegisteredOp("%", o.Name, o.Params) }

// Param is one keyword argument to a registered operation.
type Param struct {
	Key   string
	Value string
}

func formatRegisteredOp(token, name string, params []Param) string {
	s := fmt.Sprintf("%s %s", token, name)
	for _, p := range params {
		s += fmt.Sprintf(" %s %s", p.Key, p.Value)
	}
	return s
}

// BeginMask opens a mask region sourced from property Name; EndMask closes
// the most recently opened one (§4.4.7).
type BeginMask struct {
	Base
	Name     string
	Negated  bool
}

func (BeginMask) operation() {}
func (o BeginMask) String() string {
	if o.Negated {
		return fmt.Sprintf("[! %s", o.Name)
	}
	return fmt.Sprintf("[ %s", o.Name)
}

// EndMask closes the innermost open mask region.
type EndMask struct{ Base }

func (EndMask) operation()     {}
func (EndMask) String() string { return "]" }

// MaskOperation merges another mask vector (sourced from Name) into the
// region accumulator using Combine, left to right (§4.4.7).
type MaskOperation struct {
	Base
	Name    string
	Combine MaskCombine
}

func (MaskOperation) operation() {}
func (o MaskOperation) String() string {
	tok := map[MaskCombine]string{
		CombineAnd: "&", CombineAndNot: "&!",
		CombineOr: "|", CombineOrNot: "|!",
		CombineXor: "^", CombineXorNot: "^!",
	}[o.Combine]
	return fmt.Sprintf("%s %s", tok, o.Name)
}

// VectorComparisonOperation applies a comparison (§4.4.6) to the current
// vector, always producing a same-shape Boolean vector; it is not used as a
// slice selector.
type VectorComparisonOperation struct {
	Base
	Kind  CompareKind
	Value string
}

func (VectorComparisonOperation) operation() {}
func (o VectorComparisonOperation) String() string {
	return fmt.Sprintf("%s %s", o.Kind, o.Value)
}

// SquareColumnIs slices a column out of a square matrix by entry name (§4.4.5).
type SquareColumnIs struct {
	Base
	Entry string
}

func (SquareColumnIs) operation() {}
func (o SquareColumnIs) String() string { return fmt.Sprintf("@| %s", o.Entry) }

// SquareRowIs slices a row out of a square matrix by entry name (§4.4.5).
type SquareRowIs struct {
	Base
	Entry string
}

func (SquareRowIs) operation() {}
func (o SquareRowIs) String() string { return fmt.Sprintf("@- %s", o.Entry) }

// Sequence is an ordered, immutable (after parsing) list of operations
// (§3.4) plus the original query text they were parsed from, needed to
// render §4.6 caret errors.
type Sequence struct {
	Operations []Operation
	Text       string
}
