// Package domainerrors carries a stable error code from stores and services
// up to the transport, which alone decides the HTTP status.
package domainerrors

import "errors"

type Code string

// Input problems.
const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
)

// Record state problems.
const (
	CodeNotFound          Code = "not_found"
	CodeDuplicateKey      Code = "duplicate_key"
	CodeConflict          Code = "conflict"
	CodeInvalidTransition Code = "invalid_transition"
)

// Caller identity problems.
const (
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
)

// Infrastructure problems. Their messages never include the cause.
const (
	CodeStorageFailure Code = "storage_failure"
	CodeTimeout        Code = "timeout"
	CodeInternal       Code = "internal_error"
)

// Error pairs a Code with a client-safe message. Err keeps the cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so
// errors.Is(err, &Error{Code: CodeNotFound}) works through wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches msg to err. A code already present in err's chain wins over code.
func Wrap(err error, code Code, msg string) error {
	var prev *Error
	if errors.As(err, &prev) {
		code = prev.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err's chain carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf returns err's code; plain errors are CodeInternal and nil has none.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
