package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so transports can map it to a status.
type Kind string

const (
	KindNotAuthenticated  Kind = "NOT_AUTHENTICATED"
	KindForbidden         Kind = "FORBIDDEN"
	KindTimeWindowExpired Kind = "TIME_WINDOW_EXPIRED"
	KindInvalidAddress    Kind = "INVALID_ADDRESS"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInternal          Kind = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrConflict) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks.
var (
	ErrNotAuthenticated  = &Error{Kind: KindNotAuthenticated}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrTimeWindowExpired = &Error{Kind: KindTimeWindowExpired}
	ErrInvalidAddress    = &Error{Kind: KindInvalidAddress}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInternal          = &Error{Kind: KindInternal}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotAuthenticated(message string) *Error  { return New(KindNotAuthenticated, message) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func TimeWindowExpired(message string) *Error { return New(KindTimeWindowExpired, message) }
func InvalidAddress(message string) *Error    { return New(KindInvalidAddress, message) }
func Validation(message string) *Error        { return New(KindValidation, message) }
func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Conflict(message string) *Error          { return New(KindConflict, message) }

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
