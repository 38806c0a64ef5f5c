package executor

import (
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// SquareColumnIs/SquareRowIs carry only the entry name to slice by, so they
// cannot re-run §4.4.4's fetch-by-property-name chain the way §4.4.5's prose
// suggests; instead they slice a single row or column out of a MatrixState
// already sitting on top of the stack, producing the opposite axis's
// VectorState (see DESIGN.md "square slice reinterpretation").

func findEntry(entries []string, name string) int {
	for i, e := range entries {
		if e == name {
			return i
		}
	}
	return -1
}

// squareColumnPhrase implements SquareColumnIs: the named column becomes a
// VectorState over the row axis.
func (ex *Executor) squareColumnPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "square column slice (§4.4.5)", Try: func(ctx *phrase.Context) (bool, error) {
		m, ok := ctx.Stack.Top().(stack.MatrixState)
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		op, ok := rem[0].(query.SquareColumnIs)
		if !ok {
			return false, nil
		}
		if m.Rows.EntriesAxisName == "" || m.Rows.EntriesAxisName != m.Columns.EntriesAxisName {
			return true, shapeMismatchErr(ctx.Text, op, "ShapeMismatch: %s is not a square matrix", op.Entry)
		}
		colIdx := findEntry(m.Columns.Entries, op.Entry)
		if colIdx < 0 {
			return true, unknownPropertyErr(ctx.Text, op, m.Columns.EntriesAxisName, op.Entry)
		}
		values := m.Values.Column(colIdx)
		deps := store.NewDepSet()
		deps.Union(m.Deps())
		next := stack.NewVectorState(m.Rows.EntriesAxisName, m.Rows.Entries, m.PropertyName, m.Rows.PropertyAxisName, m.Rows.IsCompletePropertyAxis, values, nil, deps)
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(1)
		return true, nil
	}}
}

// squareRowPhrase implements SquareRowIs: the named row becomes a
// VectorState over the column axis.
func (ex *Executor) squareRowPhrase() phrase.Phrase {
	return phrase.Phrase{Name: "square row slice (§4.4.5)", Try: func(ctx *phrase.Context) (bool, error) {
		m, ok := ctx.Stack.Top().(stack.MatrixState)
		if !ok {
			return false, nil
		}
		rem := ctx.Remaining()
		if len(rem) == 0 {
			return false, nil
		}
		op, ok := rem[0].(query.SquareRowIs)
		if !ok {
			return false, nil
		}
		if m.Rows.EntriesAxisName == "" || m.Rows.EntriesAxisName != m.Columns.EntriesAxisName {
			return true, shapeMismatchErr(ctx.Text, op, "ShapeMismatch: %s is not a square matrix", op.Entry)
		}
		rowIdx := findEntry(m.Rows.Entries, op.Entry)
		if rowIdx < 0 {
			return true, unknownPropertyErr(ctx.Text, op, m.Rows.EntriesAxisName, op.Entry)
		}
		values := m.Values.Row(rowIdx)
		deps := store.NewDepSet()
		deps.Union(m.Deps())
		next := stack.NewVectorState(m.Columns.EntriesAxisName, m.Columns.Entries, m.PropertyName, m.Columns.PropertyAxisName, m.Columns.IsCompletePropertyAxis, values, nil, deps)
		ctx.Stack.Pop()
		ctx.Stack.Push(next)
		ctx.Advance(1)
		return true, nil
	}}
}
