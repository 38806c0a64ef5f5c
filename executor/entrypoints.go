// Public entry points (§6.4): parsing, running, and cheap syntactic
// inspection of a query.Sequence that callers (e.g. a UI layer deciding how
// to render a result before it has a Store handy) can use without executing
// anything against a Store.
package executor

import (
	"github.com/tanaylab/daf/parser"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// Parse tokenizes and parses text into a Sequence, per §4.1/§4.2.
func Parse(text string, reg parser.Registry, operandOnly parser.OperandOnly) (*query.Sequence, error) {
	return parser.Parse(text, reg, operandOnly)
}

// HasQuery reports whether text parses as a well-formed query, without
// running it.
func HasQuery(text string, reg parser.Registry) bool {
	_, err := parser.Parse(text, reg, parser.OperandNone)
	return err == nil
}

// GetQuery parses and runs text in one step.
func (ex *Executor) GetQuery(text string, reg parser.Registry, operandOnly parser.OperandOnly) (stack.Element, store.DepSet, error) {
	seq, err := parser.Parse(text, reg, operandOnly)
	if err != nil {
		return nil, nil, err
	}
	return ex.Run(seq)
}

// IsAxisQuery reports whether seq is exactly a bare axis reference
// (`@ name`), the form used to list an axis's own entries.
func IsAxisQuery(seq *query.Sequence) bool {
	if len(seq.Operations) != 1 {
		return false
	}
	a, ok := seq.Operations[0].(query.Axis)
	return ok && a.Name != ""
}

// QueryAxisName returns the axis named by seq's leading Axis operation, if any.
func QueryAxisName(seq *query.Sequence) (string, bool) {
	if len(seq.Operations) == 0 {
		return "", false
	}
	a, ok := seq.Operations[0].(query.Axis)
	if !ok || a.Name == "" {
		return "", false
	}
	return a.Name, true
}

// QueryResultDimensions is a syntactic estimate of the terminal result's
// shape (-1 = names, 0 = scalar, 1 = vector, 2 = matrix), tracking how each operation
// kind would change the stack-top shape the way the phrase table does,
// without needing a Store to run against. It is a convenience for callers
// choosing a rendering strategy ahead of time, not a substitute for Run.
func QueryResultDimensions(seq *query.Sequence) int {
	dims := 0
	for _, op := range seq.Operations {
		switch o := op.(type) {
		case query.Axis:
			dims = 1
		case query.LookupScalar:
			dims = 0
		case query.Lookup, query.Fetch, query.IfNot, query.AsAxis, query.VectorComparisonOperation:
			if dims < 1 {
				dims = 1
			}
		case query.LookupMatrix, query.CountBy:
			dims = 2
		case query.SquareColumnIs, query.SquareRowIs:
			dims = 1
		case query.Names:
			dims = -1
		case query.GroupBy:
			if o.Axis == query.GroupVector {
				dims = 1
			}
		case query.ReductionOperation:
			switch o.Kind {
			case query.ReduceToScalar:
				dims = 0
			case query.ReduceToRow, query.ReduceToColumn:
				dims = 1
			}
		case query.EltwiseOperation:
			// shape-preserving
		}
	}
	return dims
}

// QueryRequiresRelayout reports whether seq contains a matrix lookup whose
// two axes differ, i.e. one that may need the store to transpose its native
// layout (§4.4.10, §5 "relayout is the store's concern").
func QueryRequiresRelayout(seq *query.Sequence) bool {
	var axes []string
	for _, op := range seq.Operations {
		if a, ok := op.(query.Axis); ok && a.Name != "" {
			axes = append(axes, a.Name)
		}
		if _, ok := op.(query.LookupMatrix); ok && len(axes) >= 2 {
			if axes[len(axes)-1] != axes[len(axes)-2] {
				return true
			}
		}
	}
	return false
}
