package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so transport layers can map it to a status
// without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidPayload
	KindBadRequest
)

// Error is a domain error with a kind and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a referenced entity absent or invisible to the caller.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Forbidden reports a caller lacking ownership or permission.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Conflict reports an overlapping discount window or duplicate code.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// InvalidPayload reports structurally invalid input, e.g. end before start.
func InvalidPayload(message string) error {
	return &Error{Kind: KindInvalidPayload, Message: message}
}

// BadRequest reports valid input that violates a business rule: out of stock,
// quota exhausted, below minimum order, product unavailable.
func BadRequest(message string) error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Internal wraps an unexpected failure from a downstream dependency.
func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind of err, defaulting to KindInternal for errors that
// did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
