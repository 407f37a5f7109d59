// internal/app/system/apperrors/apperrors.go

// Package apperrors defines the error taxonomy shared by the dispatcher
// and the processor.
//
// Validation and authorization failures carry a user-facing message and
// are rejected without side effects. Transient failures are recoverable
// by fallback or queue redelivery. Everything else is unexpected and is
// logged with full context before a generic failure is surfaced.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError rejects caller input that fails a business rule.
type ValidationError struct {
	Msg     string // internal detail, for logs
	UserMsg string // safe to echo back to the reporting user
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with distinct log and user text.
func Validation(msg, userMsg string) *ValidationError {
	if userMsg == "" {
		userMsg = msg
	}
	return &ValidationError{Msg: msg, UserMsg: userMsg}
}

// Validationf formats a ValidationError that shows the same text to
// logs and users.
func Validationf(format string, args ...any) *ValidationError {
	msg := fmt.Sprintf(format, args...)
	return &ValidationError{Msg: msg, UserMsg: msg}
}

// AuthorizationError rejects an actor modifying a record they don't own.
type AuthorizationError struct {
	Msg     string
	UserMsg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// Authorization builds an AuthorizationError.
func Authorization(msg, userMsg string) *AuthorizationError {
	if userMsg == "" {
		userMsg = "You are not allowed to change this record."
	}
	return &AuthorizationError{Msg: msg, UserMsg: userMsg}
}

// ConflictError rejects a write carrying a stale optimistic-concurrency
// token.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError.
func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// TransientError wraps infrastructure failures (queue publish timeout,
// store unavailable) that are safe to retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthorization reports whether err is (or wraps) an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// UserMessage extracts the text safe to show to the reporting user.
// Unexpected errors map to a generic failure line so internals never
// leak into chat.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.UserMsg
	}
	var ae *AuthorizationError
	if errors.As(err, &ae) {
		return ae.UserMsg
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return "Someone else saved changes first. Please reopen and try again."
	}
	return "Something went wrong. Please try again or contact an administrator."
}
