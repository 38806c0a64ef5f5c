package executor

import (
	"github.com/tanaylab/daf/qerr"
	"github.com/tanaylab/daf/query"
)

func spanOf(op query.Operation) qerr.Span {
	s, e := op.Span()
	return qerr.Span{Start: s, End: e}
}

func unknownAxisErr(text string, op query.Operation, axis string) error {
	return qerr.New(qerr.CategoryUnknownAxis, text, spanOf(op), "UnknownAxis: %q", axis).WithDetail("axis", axis)
}

func unknownPropertyErr(text string, op query.Operation, axis, name string) error {
	return qerr.New(qerr.CategoryUnknownProp, text, spanOf(op), "UnknownProperty: %q on axis %q", name, axis).
		WithDetail("axis", axis).WithDetail("name", name)
}

func missingDefaultErr(text string, op query.Operation, what string) error {
	return qerr.New(qerr.CategoryMissingDefault, text, spanOf(op), "MissingDefault: %s has no value and no IfMissing was given", what)
}

func shapeMismatchErr(text string, op query.Operation, format string, args ...interface{}) error {
	return qerr.New(qerr.CategoryShapeMismatch, text, spanOf(op), format, args...)
}

func unsupportedTypeErr(text string, op query.Operation, opName string) error {
	return qerr.New(qerr.CategoryUnsupported, text, spanOf(op), "UnsupportedType: %q does not support string input", opName)
}

func emptyGroupErr(text string, op query.Operation, group string) error {
	return qerr.New(qerr.CategoryEmptyGroup, text, spanOf(op), "EmptyGroup: %q has no matching elements and no IfMissing was given", group).
		WithDetail("group", group)
}

func parseErr(text string, op query.Operation, format string, args ...interface{}) error {
	return qerr.New(qerr.CategoryParse, text, spanOf(op), format, args...)
}
