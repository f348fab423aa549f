package core

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	ErrInvalidUser        ErrorCode = "invalid_user"
	ErrNoActiveSession    ErrorCode = "no_active_session"
	ErrEmptyInput         ErrorCode = "empty_input"
	ErrSessionBusy        ErrorCode = "session_busy"
	ErrInsufficientData   ErrorCode = "insufficient_data"
	ErrServiceTimeout     ErrorCode = "service_timeout"
	ErrServiceUnavailable ErrorCode = "service_unavailable"
)

// Error carries a code alongside the message so callers can branch on the
// failure kind without string matching. All engine errors are recoverable;
// none is fatal to the process.
type Error struct {
	Code    ErrorCode
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// E builds an Error with the given code and message.
func E(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying error. Errors that already carry a
// code pass through unchanged.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Code: code, Message: message, wrapped: err}
}

// CodeOf extracts the error code, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func classify(code ErrorCode) func(error) bool {
	return func(err error) bool {
		if err == nil {
			return false
		}
		var ce *Error
		if errors.As(err, &ce) {
			return ce.Code == code
		}
		return false
	}
}

// Helper predicates for common error handling patterns.
var (
	IsInvalidUser        = classify(ErrInvalidUser)
	IsNoActiveSession    = classify(ErrNoActiveSession)
	IsEmptyInput         = classify(ErrEmptyInput)
	IsSessionBusy        = classify(ErrSessionBusy)
	IsInsufficientData   = classify(ErrInsufficientData)
	IsServiceTimeout     = classify(ErrServiceTimeout)
	IsServiceUnavailable = classify(ErrServiceUnavailable)
)
