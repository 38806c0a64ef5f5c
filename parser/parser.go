// Package parser implements §4.2: token stream -> ordered Sequence of
// Operations, including parameterized registered operations.
package parser

import (
	"strings"

	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/ops"
	"github.com/tanaylab/daf/qerr"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/token"
)

// Registry is the subset of ops.Registry the parser needs to validate
// registered-operation names at parse time.
type Registry interface {
	LookupEltwise(name string) (ops.Eltwise, bool)
	LookupReduction(name string) (ops.Reduction, bool)
}

// OperandOnly names a single surface operator symbol; when Parse is called
// with a non-empty OperandOnly and the input is a single bare value token,
// Parse returns the operation that operator would have produced for that
// value (§4.2 "operand_only").
type OperandOnly string

const (
	OperandNone         OperandOnly = ""
	OperandAxis         OperandOnly = "@"
	OperandLookupScalar OperandOnly = "."
	OperandLookup       OperandOnly = ":"
)

type parser struct {
	toks []token.Token
	pos  int
	text string
	reg  Registry
	// inChain tracks whether the immediately preceding emitted
	// operation was a Lookup/Fetch in the same uninterrupted chain, so a
	// repeated lookup-operator token is classified as Fetch (§4.4.4;
	// canonical-syntax decision recorded in DESIGN.md).
	inChain bool
}

// Parse tokenizes and parses text into a Sequence, validating registered
// operation names against reg. operandOnly implements the §4.2 single-value
// shortcut.
func Parse(text string, reg Registry, operandOnly OperandOnly) (*query.Sequence, error) {
	toks, err := token.Lex(text)
	if err != nil {
		if se, ok := err.(*token.SyntaxError); ok {
			return nil, qerr.New(qerr.CategorySyntax, text, qerr.Span{Start: se.Offset, End: se.Offset + 1}, "%s", se.Message)
		}
		return nil, qerr.New(qerr.CategorySyntax, text, qerr.Span{}, "%s", err.Error())
	}

	if operandOnly != OperandNone && len(toks) == 2 && toks[0].Kind == token.KindValue && toks[1].Kind == token.KindEOF {
		op, err := operandOnlyOperation(operandOnly, toks[0])
		if err != nil {
			return nil, err
		}
		return &query.Sequence{Operations: []query.Operation{op}, Text: text}, nil
	}

	p := &parser{toks: toks, text: text, reg: reg}
	ops, err := p.parseAll()
	if err != nil {
		return nil, err
	}
	return &query.Sequence{Operations: ops, Text: text}, nil
}

func operandOnlyOperation(kind OperandOnly, v token.Token) (query.Operation, error) {
	b := makeBase(v, v)
	switch kind {
	case OperandAxis:
		return query.Axis{Base: b, Name: v.Value}, nil
	case OperandLookupScalar:
		return query.LookupScalar{Base: b, Name: v.Value}, nil
	case OperandLookup:
		return query.Lookup{Base: b, Name: v.Value}, nil
	default:
		return nil, qerr.New(qerr.CategoryParse, v.Value, qerr.Span{}, "unsupported operand_only kind %q", string(kind))
	}
}

func makeBase(first, last token.Token) query.Base {
	return query.Base{StartOffset: first.FirstByteOffset, EndOffset: last.LastByteOffset}
}

func (p *parser) cur() token.Token  { return p.toks[p.pos] }
func (p *parser) atEnd() bool       { return p.cur().Kind == token.KindEOF }
func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	if t.Kind != token.KindEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseAll() ([]query.Operation, error) {
	var out []query.Operation
	for !p.atEnd() {
		t := p.cur()
		if t.Kind != token.KindOperator {
			return nil, qerr.New(qerr.CategoryParse, p.text, spanOf(t), "ExpectedOperator: found value %q", t.Value)
		}
		p.advance()
		op, isChainable, err := p.parseOperator(t)
		if err != nil {
			return nil, err
		}
		if op != nil {
			if isChainable {
				if p.inChain {
					op = toFetch(op)
				}
				p.inChain = true
			} else if !isModifierAfterChain(op) {
				p.inChain = false
			}
			out = append(out, op)
		}
	}
	return out, nil
}

// isModifierAfterChain reports whether op is one of the modifiers that may
// sit between chained Lookup/Fetch operations (IfMissing, IfNot, AsAxis)
// without breaking the chain.
func isModifierAfterChain(op query.Operation) bool {
	switch op.(type) {
	case query.IfMissing, query.IfNot, query.AsAxis:
		return true
	default:
		return false
	}
}

func toFetch(op query.Operation) query.Operation {
	if lk, ok := op.(query.Lookup); ok {
		return query.Fetch{Base: lk.Base, Name: lk.Name}
	}
	return op
}

func spanOf(t token.Token) qerr.Span {
	return qerr.Span{Start: t.FirstByteOffset, End: t.LastByteOffset}
}

// expectValue consumes and returns the next token if it is a value token.
func (p *parser) expectValue(context string) (token.Token, error) {
	t := p.cur()
	if t.Kind != token.KindValue {
		return token.Token{}, qerr.New(qerr.CategoryParse, p.text, spanOf(t), "ExpectedValue: %s", context)
	}
	p.advance()
	return t, nil
}

// maybeValue consumes and returns the next token if it is a value token,
// without error when it is not.
func (p *parser) maybeValue() (token.Token, bool) {
	t := p.cur()
	if t.Kind == token.KindValue {
		p.advance()
		return t, true
	}
	return token.Token{}, false
}

func (p *parser) parseOperator(opTok token.Token) (query.Operation, bool, error) {
	switch opTok.Value {
	case "?":
		return p.parseNames(opTok)
	case "@":
		v, ok := p.maybeValue()
		name := ""
		last := opTok
		if ok {
			name = v.Value
			last = v
		}
		return query.Axis{Base: makeBase(opTok, last), Name: name}, false, nil
	case "=@":
		v, ok := p.maybeValue()
		name := ""
		last := opTok
		if ok {
			name = v.Value
			last = v
		}
		return query.AsAxis{Base: makeBase(opTok, last), Name: name}, false, nil
	case ".":
		v, err := p.expectValue("LookupScalar requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.LookupScalar{Base: makeBase(opTok, v), Name: v.Value}, false, nil
	case ":":
		v, err := p.expectValue("Lookup requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.Lookup{Base: makeBase(opTok, v), Name: v.Value}, true, nil
	case "::":
		v, err := p.expectValue("LookupMatrix requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.LookupMatrix{Base: makeBase(opTok, v), Name: v.Value}, false, nil
	case "||":
		return p.parseIfMissing(opTok)
	case "??":
		v, ok := p.maybeValue()
		last := opTok
		hasValue := false
		val := ""
		if ok {
			last = v
			hasValue = true
			val = v.Value
		}
		return query.IfNot{Base: makeBase(opTok, last), Value: val, HasValue: hasValue}, false, nil
	case "%":
		return p.parseEltwise(opTok)
	case ">>":
		return p.parseReduction(opTok, query.ReduceToScalar)
	case ">-":
		return p.parseReduction(opTok, query.ReduceToRow)
	case ">|":
		return p.parseReduction(opTok, query.ReduceToColumn)
	case "/":
		v, err := p.expectValue("GroupBy requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.GroupBy{Base: makeBase(opTok, v), Name: v.Value, Axis: query.GroupVector}, false, nil
	case "-/":
		v, err := p.expectValue("GroupRowsBy requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.GroupBy{Base: makeBase(opTok, v), Name: v.Value, Axis: query.GroupRows}, false, nil
	case "|/":
		v, err := p.expectValue("GroupColumnsBy requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.GroupBy{Base: makeBase(opTok, v), Name: v.Value, Axis: query.GroupColumns}, false, nil
	case "*":
		v, err := p.expectValue("CountBy requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.CountBy{Base: makeBase(opTok, v), Name: v.Value}, false, nil
	case "@|":
		v, err := p.expectValue("SquareColumnIs requires an entry name")
		if err != nil {
			return nil, false, err
		}
		return query.SquareColumnIs{Base: makeBase(opTok, v), Entry: v.Value}, false, nil
	case "@-":
		v, err := p.expectValue("SquareRowIs requires an entry name")
		if err != nil {
			return nil, false, err
		}
		return query.SquareRowIs{Base: makeBase(opTok, v), Entry: v.Value}, false, nil
	case "[":
		v, err := p.expectValue("BeginMask requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.BeginMask{Base: makeBase(opTok, v), Name: v.Value}, false, nil
	case "[!":
		v, err := p.expectValue("BeginNegatedMask requires a property name")
		if err != nil {
			return nil, false, err
		}
		return query.BeginMask{Base: makeBase(opTok, v), Name: v.Value, Negated: true}, false, nil
	case "]":
		return query.EndMask{Base: makeBase(opTok, opTok)}, false, nil
	case "&", "&!", "|", "|!", "^", "^!":
		return p.parseMaskOp(opTok)
	case "<", "<=", "=", "!=", ">", ">=", "~", "!~":
		return p.parseComparison(opTok)
	default:
		return nil, false, qerr.New(qerr.CategoryParse, p.text, spanOf(opTok), "unknown operator %q", opTok.Value)
	}
}

func (p *parser) parseNames(opTok token.Token) (query.Operation, bool, error) {
	v, ok := p.maybeValue()
	if !ok {
		return query.Names{Base: makeBase(opTok, opTok), Kind: query.NamesAuto}, false, nil
	}
	switch v.Value {
	case "scalars":
		return query.Names{Base: makeBase(opTok, v), Kind: query.NamesScalars}, false, nil
	case "axes":
		return query.Names{Base: makeBase(opTok, v), Kind: query.NamesAxes}, false, nil
	default:
		return nil, false, qerr.New(qerr.CategoryParse, p.text, spanOf(v), "ExpectedOperator: Names() accepts only \"scalars\" or \"axes\", got %q", v.Value)
	}
}

func (p *parser) parseIfMissing(opTok token.Token) (query.Operation, bool, error) {
	v, err := p.expectValue("IfMissing requires a default value")
	if err != nil {
		return nil, false, err
	}
	last := v
	typ := ""
	if tv, ok := p.maybeValue(); ok {
		if _, known := dtype.ParseDtype(tv.Value); known {
			typ = tv.Value
			last = tv
		} else {
			// not a type token: put it back; parseAll then reports it as
			// ExpectedOperator, since a value cannot start an operation
			p.pos--
		}
	}
	return query.IfMissing{Base: makeBase(opTok, last), Value: v.Value, Type: typ}, false, nil
}

func (p *parser) parseMaskOp(opTok token.Token) (query.Operation, bool, error) {
	v, err := p.expectValue("mask combinator requires a property name")
	if err != nil {
		return nil, false, err
	}
	kinds := map[string]query.MaskCombine{
		"&": query.CombineAnd, "&!": query.CombineAndNot,
		"|": query.CombineOr, "|!": query.CombineOrNot,
		"^": query.CombineXor, "^!": query.CombineXorNot,
	}
	return query.MaskOperation{Base: makeBase(opTok, v), Name: v.Value, Combine: kinds[opTok.Value]}, false, nil
}

func (p *parser) parseComparison(opTok token.Token) (query.Operation, bool, error) {
	v, err := p.expectValue("comparison requires a value")
	if err != nil {
		return nil, false, err
	}
	kinds := map[string]query.CompareKind{
		"<": query.IsLess, "<=": query.IsLessEqual, "=": query.IsEqual,
		"!=": query.IsNotEqual, ">": query.IsGreater, ">=": query.IsGreaterEqual,
		"~": query.IsMatch, "!~": query.IsNotMatch,
	}
	return query.VectorComparisonOperation{Base: makeBase(opTok, v), Kind: kinds[opTok.Value], Value: v.Value}, false, nil
}

func (p *parser) parseEltwise(opTok token.Token) (query.Operation, bool, error) {
	name, params, last, err := p.parseRegisteredOp(opTok)
	if err != nil {
		return nil, false, err
	}
	if p.reg != nil {
		if _, ok := p.reg.LookupEltwise(name.Value); !ok {
			return nil, false, qerr.New(qerr.CategoryParse, p.text, spanOf(name), "UnknownOperation: no registered eltwise operation %q", name.Value)
		}
	}
	return query.EltwiseOperation{Base: makeBase(opTok, last), Name: name.Value, Params: params}, false, nil
}

func (p *parser) parseReduction(opTok token.Token, kind query.ReductionKind) (query.Operation, bool, error) {
	name, params, last, err := p.parseRegisteredOp(opTok)
	if err != nil {
		return nil, false, err
	}
	if p.reg != nil {
		if _, ok := p.reg.LookupReduction(name.Value); !ok {
			return nil, false, qerr.New(qerr.CategoryParse, p.text, spanOf(name), "UnknownOperation: no registered reduction operation %q", name.Value)
		}
	}
	return query.ReductionOperation{Base: makeBase(opTok, last), Name: name.Value, Kind: kind, Params: params}, false, nil
}

// parseRegisteredOp consumes the operation name then "key value" pairs until
// the next operator token or EOF (§4.2).
func (p *parser) parseRegisteredOp(opTok token.Token) (token.Token, []query.Param, token.Token, error) {
	name, err := p.expectValue("registered operation requires a name")
	if err != nil {
		return token.Token{}, nil, token.Token{}, err
	}
	last := name
	seen := map[string]bool{}
	var params []query.Param
	for {
		key, ok := p.maybeValue()
		if !ok {
			break
		}
		val, err := p.expectValue("registered operation parameter " + key.Value + " requires a value")
		if err != nil {
			return token.Token{}, nil, token.Token{}, err
		}
		if seen[key.Value] {
			return token.Token{}, nil, token.Token{}, qerr.New(qerr.CategoryParse, p.text, spanOf(key), "RepeatedParameter: %q given more than once", key.Value)
		}
		seen[key.Value] = true
		params = append(params, query.Param{Key: key.Value, Value: val.Value})
		last = val
	}
	return name, params, last, nil
}

// FormatQuery renders seq back to canonical surface syntax; used both for
// error-message reconstruction and the parse-round-trip testable property
// (§8.1). Values are written as-is, without quoting or escaping, so a value
// containing whitespace or an operator character does not round-trip.
func FormatQuery(seq *query.Sequence) string {
	var sb strings.Builder
	for i, op := range seq.Operations {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(op.String())
	}
	return sb.String()
}

