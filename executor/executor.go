// Package executor implements §4.4 (phrase implementations), §4.5 (the
// state-machine summary) and §6.4 (public entry points). It is the stack
// machine that matches phrases against a typed stack, fetches and
// transforms data through the store.Store abstraction, and produces one of
// the four public result shapes.
package executor

import (
	"github.com/tanaylab/daf/ops"
	"github.com/tanaylab/daf/phrase"
	"github.com/tanaylab/daf/qerr"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
	"github.com/tanaylab/daf/store"
)

// Executor runs QuerySequences against a Store using a Registry of
// registered eltwise/reduction operations. Instances hold no shared mutable
// state of their own (design note "Thread safety") and are safe to use
// concurrently from multiple goroutines against the same Store, provided
// the Store itself honors the single-writer/multiple-reader contract of §5.
type Executor struct {
	store    store.Store
	registry *ops.Registry
	table    []phrase.Phrase
}

// New creates an Executor. If registry is nil, ops.NewDefaultRegistry() is used.
func New(st store.Store, registry *ops.Registry) *Executor {
	if registry == nil {
		registry = ops.NewDefaultRegistry()
	}
	ex := &Executor{store: st, registry: registry}
	ex.table = ex.buildTable()
	return ex
}

// Run executes seq to completion and returns the terminal stack element plus
// the union of every store dependency key touched (§5).
func (ex *Executor) Run(seq *query.Sequence) (stack.Element, store.DepSet, error) {
	ctx := &phrase.Context{Ops: seq.Operations, Text: seq.Text}
	if err := phrase.Dispatch(ex.table, ctx); err != nil {
		return nil, nil, err
	}
	if len(ctx.Stack) != 1 {
		return nil, nil, qerr.New(qerr.CategoryIncomplete, seq.Text, qerr.Span{Start: 0, End: len(seq.Text)},
			"IncompleteQuery: expected exactly one terminal result, stack has %d elements", len(ctx.Stack))
	}
	top := ctx.Stack[0]
	return top, top.Deps(), nil
}
