// Package serrors attaches a semantic kind to errors so transport layers can
// map them to status codes without knowing the concrete cause.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a sentinel for a category of failure.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

func NewKind(name string) Kind { return kind{s: name} }

var (
	ErrNotFound    = NewKind("NOT_FOUND")
	ErrBadRequest  = NewKind("BAD_REQUEST")
	ErrConflict    = NewKind("CONFLICT")
	ErrUnavailable = NewKind("UNAVAILABLE")
	ErrInternal    = NewKind("INTERNAL")
)

// Error carries a kind, an optional cause and an optional message.
// errors.Is matches either the kind or anything in the cause chain.
type Error struct {
	kind Kind
	err  error
	msg  string
}

func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	return e.err != nil && errors.Is(e.err, target)
}

func (e *Error) Kind() Kind      { return e.kind }
func (e *Error) Message() string { return e.msg }

// KindOf returns the kind of the first *Error in err's chain, or ErrInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) && se.kind != nil {
		return se.kind
	}
	return ErrInternal
}
