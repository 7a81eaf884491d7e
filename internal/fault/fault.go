package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an interpreter error. Kinds are part of the language
// surface: hosts and tests branch on them, so the strings are stable.
type Kind string

const (
	Syntax            Kind = "SyntaxError"
	UnclosedBlock     Kind = "UnclosedBlockError"
	Name              Kind = "NameError"
	Type              Kind = "TypeError"
	InvalidIndex      Kind = "InvalidIndexError"
	Unassigned        Kind = "UnassignedValueError"
	ZeroDivision      Kind = "ZeroDivisionError"
	Recursion         Kind = "RecursionError"
	InvalidClassifier Kind = "InvalidClassifierError"
	Interrupted       Kind = "Interrupted"
	Internal          Kind = "InternalError"
)

// Error carries a kind, the source line it was raised on (0 when the
// error is not tied to a line, e.g. host interruption), and a message.
type Error struct {
	Kind    Kind
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, line int, message string) *Error {
	return &Error{Kind: kind, Line: line, Message: message}
}

func Errorf(kind Kind, line int, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Line: line, Message: fmt.Sprintf(format, a...)}
}

// KindOf returns the kind of err, or Internal when err is not a fault.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

// LineOf returns the source line recorded on err, or 0.
func LineOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Line
	}
	return 0
}
