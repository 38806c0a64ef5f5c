// Package phrase implements §4.3: a fixed, ordered phrase table and the
// predicate helpers phrases use to recognize a stack/operation shape.
// First matching phrase wins; table-driven dispatch lives here, the
// per-phrase business logic lives in package executor (design note:
// "Predicate-based matching... small predicate functions rather than a
// class hierarchy").
package phrase

import (
	"github.com/tanaylab/daf/dtype"
	"github.com/tanaylab/daf/qerr"
	"github.com/tanaylab/daf/query"
	"github.com/tanaylab/daf/stack"
)

// Context is the mutable state threaded through one query's phrase
// dispatch loop: the working stack, the operation sequence and current
// read position, and the original query text (for caret-marker errors).
type Context struct {
	Stack stack.Stack
	Ops   []query.Operation
	Pos   int
	Text  string
}

// Remaining returns the not-yet-consumed operation slice.
func (c *Context) Remaining() []query.Operation {
	if c.Pos >= len(c.Ops) {
		return nil
	}
	return c.Ops[c.Pos:]
}

// Advance consumes n operations.
func (c *Context) Advance(n int) { c.Pos += n }

// AtEnd reports whether every operation has been consumed.
func (c *Context) AtEnd() bool { return c.Pos >= len(c.Ops) }

// Phrase is one entry in the ordered dispatch table (§4.3).
type Phrase struct {
	// Name documents which spec.md §4.4.x mechanics this phrase implements.
	Name string
	// Try attempts to match and, if matched, execute this phrase against
	// ctx. matched == false means "this phrase doesn't apply here, try the
	// next one" and ctx must be left untouched. matched == true with a
	// non-nil error means this phrase recognized the shape but execution
	// failed (e.g. MissingDefault, ShapeMismatch) — dispatch stops and the
	// error propagates; it is not "try the next phrase".
	Try func(ctx *Context) (matched bool, err error)
}

// Dispatch repeatedly finds the first matching phrase in table and runs it
// until every operation is consumed. It returns InvalidPhrase if no phrase
// matches while operations remain. It does not check the final stack shape;
// callers inspect ctx.Stack after Dispatch returns nil (executor.Run reports
// IncompleteQuery there).
func Dispatch(table []Phrase, ctx *Context) error {
	for !ctx.AtEnd() {
		matchedAny := false
		for _, p := range table {
			matched, err := p.Try(ctx)
			if err != nil {
				return err
			}
			if matched {
				matchedAny = true
				checkStackInvariants(ctx.Stack, p.Name)
				break
			}
		}
		if !matchedAny {
			return invalidPhraseError(ctx)
		}
	}
	return nil
}

// invariantChecker is implemented by every stack.Element variant that
// declares §3.3 invariants (VectorState, MatrixState).
type invariantChecker interface {
	CheckInvariants() string
}

// checkStackInvariants raises a Bug (qerr.Panic) the moment a phrase leaves
// the stack in a state that violates §3.3 — a programmer error, distinct
// from the user-facing QueryError categories (§4.6/§7), so it must never be
// silently swallowed into a wrong result.
func checkStackInvariants(s stack.Stack, phraseName string) {
	for _, e := range s {
		if c, ok := e.(invariantChecker); ok {
			if violated := c.CheckInvariants(); violated != "" {
				qerr.Panic("%s (after phrase %q)", violated, phraseName)
			}
		}
	}
}

func invalidPhraseError(ctx *Context) error {
	rest := ctx.Remaining()
	start, end := 0, len(ctx.Text)
	if len(rest) > 0 {
		start, _ = rest[0].Span()
		_, end = rest[len(rest)-1].Span()
	}
	return qerr.New(qerr.CategoryInvalidPhrase, ctx.Text, qerr.Span{Start: start, End: end},
		"no phrase matched the current stack shape at this operation")
}

// --- predicate helpers (§4.3) ---

// AxisWithName reports whether e is a VectorState representing a bare axis
// (IsCompletePropertyAxis, property "name") that does carry an axis name.
func AxisWithName(e stack.Element) (string, bool) {
	v, ok := e.(stack.VectorState)
	if !ok || !v.IsCompletePropertyAxis || v.PropertyName != "name" {
		return "", false
	}
	return v.EntriesAxisName, v.EntriesAxisName != ""
}

// AxisWithoutName reports whether e is a complete-axis VectorState that
// carries no axis name: the placeholder a bare "@" (Axis with an empty Name)
// pushes, which the Names phrase recognizes as a request to list axis names.
func AxisWithoutName(e stack.Element) bool {
	v, ok := e.(stack.VectorState)
	return ok && v.IsCompletePropertyAxis && v.EntriesAxisName == ""
}

// VectorAxis reports whether e is a VectorState whose PropertyAxisName is
// already resolved (it is, or has already been converted to, an
// axis-indexed vector, §4.4.4 step 1).
func VectorAxis(e stack.Element) (stack.VectorState, bool) {
	v, ok := e.(stack.VectorState)
	if !ok || v.PropertyAxisName == "" {
		return stack.VectorState{}, false
	}
	return v, true
}

// VectorMaybeAxis reports whether e is any VectorState, regardless of
// whether PropertyAxisName has been resolved yet — it may still be turned
// into an axis by AsAxis/axis-of-property inference (§4.4.4 step 1).
func VectorMaybeAxis(e stack.Element) (stack.VectorState, bool) {
	v, ok := e.(stack.VectorState)
	return v, ok
}

// MatrixMaybeAxis reports whether e is a MatrixState whose values are
// strings and which has no PropertyAxisName yet — i.e. it may still be
// converted into a pair of axis-typed vectors.
func MatrixMaybeAxis(e stack.Element) (stack.MatrixState, bool) {
	m, ok := e.(stack.MatrixState)
	if !ok || m.Values.Kind != dtype.String || m.PropertyAxisName != "" {
		return stack.MatrixState{}, false
	}
	return m, true
}
