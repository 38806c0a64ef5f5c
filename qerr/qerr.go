// Package qerr defines the user-facing error categories of §4.6/§7: every
// error carries the reconstructed query text and a byte range so callers can
// render a two-line message with a caret marker under the offending span.
package qerr

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Span is a half-open byte range [Start, End) into a query's rendered text.
type Span struct {
	Start int
	End   int
}

// Category distinguishes the error kinds enumerated in §4.6.
type Category string

const (
	CategorySyntax         Category = "SyntaxError"
	CategoryParse          Category = "ParseError"
	CategoryUnknownAxis    Category = "UnknownAxis"
	CategoryUnknownProp    Category = "UnknownProperty"
	CategoryMissingDefault Category = "MissingDefault"
	CategoryShapeMismatch  Category = "ShapeMismatch"
	CategoryUnsupported    Category = "UnsupportedType"
	CategoryEmptyGroup     Category = "EmptyGroup"
	CategoryInvalidPhrase  Category = "InvalidPhrase"
	CategoryIncomplete     Category = "IncompleteQuery"
)

// QueryError is the single error type returned to callers; Category
// discriminates the §4.6 variant and Details carries category-specific
// fields (axis/property names, group value, etc.) for programmatic
// inspection without string-parsing the message.
type QueryError struct {
	Category Category
	Message  string
	Query    string
	Span     Span
	Details  map[string]string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// New constructs a QueryError. query is the reconstructed query text (as the
// printer would render it) and span is the offending token range.
func New(cat Category, query string, span Span, format string, args ...interface{}) *QueryError {
	return &QueryError{
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Query:    query,
		Span:     span,
	}
}

// WithDetail attaches one key/value to Details, returning the receiver for chaining.
func (e *QueryError) WithDetail(key, value string) *QueryError {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

// Render produces a three-line message: the query text, a caret line of "▲"
// spanning Span under it, and the error text (Error()). The caret line is colorized
// the way the teacher colorizes CLI diagnostics (fatih/color), but Render
// itself never writes to a terminal — callers decide where the string goes.
func Render(e *QueryError) string {
	start, end := e.Span.Start, e.Span.End
	if start < 0 {
		start = 0
	}
	if end > len(e.Query) {
		end = len(e.Query)
	}
	if end < start {
		end = start
	}
	width := end - start
	if width < 1 {
		width = 1
	}

	caretColor := color.New(color.FgRed, color.Bold)
	carets := caretColor.Sprint(strings.Repeat("▲", width))
	marker := strings.Repeat(" ", start) + carets

	return fmt.Sprintf("%s\n%s\n%s", e.Query, marker, e.Error())
}

// Bug represents a violated internal stack invariant (§3.3/§7): a programmer
// error, never a user-facing one. Code that catches a QueryError must not
// catch Bug; it indicates the executor itself is wrong.
type Bug struct {
	Invariant string
}

func (b *Bug) Error() string {
	return fmt.Sprintf("internal invariant violated: %s", b.Invariant)
}

// Panic raises a Bug; phrase.Dispatch calls it (via checkStackInvariants)
// when a phrase leaves the stack violating a §3.3 invariant that would
// otherwise silently produce a corrupt result.
func Panic(invariant string, args ...interface{}) {
	panic(&Bug{Invariant: fmt.Sprintf(invariant, args...)})
}
