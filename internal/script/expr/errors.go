package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidExpression indicates expression parsing failures.
	ErrInvalidExpression = errors.New("invalid expression")
	ErrUndefinedName     = errors.New("undefined name")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNoMatch           = errors.New("no match")
)

// Error carries a readable message while still matching one of the
// sentinel errors above through errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func expressionError(format string, args ...any) error {
	return &Error{Kind: ErrInvalidExpression, Message: fmt.Sprintf(format, args...)}
}

func evalError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
