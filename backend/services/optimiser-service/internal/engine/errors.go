package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a scenario failure. Rejections are caused by the caller's
// input; KindInternal means the engine violated one of its own invariants.
type Kind int

const (
	KindNotFound Kind = iota
	KindInvalidOperation
	KindInvalidInput
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "internal"
	}
}

// Error is a typed scenario failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from an error chain. Untyped errors
// count as internal failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRejection reports whether the error is caller-caused rather than a bug
// signal.
func IsRejection(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindInvalidOperation, KindInvalidInput:
		return true
	}
	return false
}
