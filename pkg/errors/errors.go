// Package errors carries the typed error used across services and its
// mapping onto HTTP responses.
package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for clients. It decides the HTTP status and
// whether the message and details may leave the process.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

type codeSpec struct {
	status    int
	fallback  string
	retryable bool
	details   bool
}

var codeSpecs = map[Code]codeSpec{
	CodeValidation:    {http.StatusBadRequest, "validation failed", false, true},
	CodeUnauthorized:  {http.StatusUnauthorized, "authentication required", false, false},
	CodeForbidden:     {http.StatusForbidden, "access denied", false, false},
	CodeNotFound:      {http.StatusNotFound, "resource not found", false, false},
	CodeConflict:      {http.StatusConflict, "conflict detected", false, false},
	CodeStateConflict: {http.StatusUnprocessableEntity, "state transition disallowed", false, true},
	CodeIdempotency:   {http.StatusConflict, "idempotency key reused", false, true},
	CodeInternal:      {http.StatusInternalServerError, "internal server error", true, false},
	CodeDependency:    {http.StatusServiceUnavailable, "dependency unavailable", true, false},
}

// spec falls back to CodeInternal for unknown codes.
func (c Code) spec() codeSpec {
	if s, ok := codeSpecs[c]; ok {
		return s
	}
	return codeSpecs[CodeInternal]
}

func (c Code) HTTPStatus() int { return c.spec().status }

func (c Code) Retryable() bool { return c.spec().retryable }

// PublicMessage is the generic text shown when the error's own message is
// withheld.
func (c Code) PublicMessage() string { return c.spec().fallback }

func (c Code) DetailsAllowed() bool { return c.spec().details }

// Public is what a client may see of an error.
type Public struct {
	Status    int
	Code      Code
	Message   string
	Details   any
	Retryable bool
}

// Render maps err onto its public form. Context cancellation and deadline
// errors render as dependency failures; other untyped errors as internal.
// Messages of 5xx errors are replaced by the code's generic text.
func Render(err error) Public {
	typed := As(err)
	switch {
	case typed != nil:
	case stdErrors.Is(err, context.DeadlineExceeded), stdErrors.Is(err, context.Canceled):
		typed = Wrap(CodeDependency, err, "request timed out")
	default:
		typed = Wrap(CodeInternal, err, "unexpected error")
	}

	code := typed.Code()
	out := Public{
		Status:    code.HTTPStatus(),
		Code:      code,
		Message:   code.PublicMessage(),
		Retryable: code.Retryable(),
	}
	if out.Status < http.StatusInternalServerError && typed.Message() != "" {
		out.Message = typed.Message()
	}
	if code.DetailsAllowed() {
		out.Details = typed.Details()
	}
	return out
}

// Error is the typed error returned by services. The zero of every accessor
// is safe on a nil receiver.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.details = details
	return &clone
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause == nil {
		return string(e.code) + ": " + e.message
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether any *Error in err's chain carries code.
func IsCode(err error, code Code) bool {
	for typed := As(err); typed != nil; typed = As(typed.cause) {
		if typed.code == code {
			return true
		}
	}
	return false
}

// Passthrough keeps typed errors as they are and wraps anything else as a
// dependency failure for the named step.
func Passthrough(err error, step string) error {
	if err == nil || As(err) != nil {
		return err
	}
	return Wrap(CodeDependency, err, step)
}
