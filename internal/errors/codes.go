// Package errors defines coded errors shared by the temporal interpreter and its surfaces.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error type.
type ErrorCode string

const (
	// ErrCodePrecondition indicates a component was used before it was initialized.
	ErrCodePrecondition ErrorCode = "PRECONDITION_FAILED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeLocaleNotFound indicates the requested locale has no configuration.
	ErrCodeLocaleNotFound ErrorCode = "LOCALE_NOT_FOUND"
	// ErrCodeGrammarUnavailable indicates the date-phrase grammar could not be loaded.
	ErrCodeGrammarUnavailable ErrorCode = "GRAMMAR_UNAVAILABLE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// Error is a structured error carrying a code and optional context.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Precondition creates a precondition error for a programming-contract violation.
func Precondition(msg string) *Error {
	return &Error{Code: ErrCodePrecondition, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// LocaleNotFound creates a locale not found error.
func LocaleNotFound(locale string) *Error {
	return &Error{
		Code:    ErrCodeLocaleNotFound,
		Message: fmt.Sprintf("locale not configured: %s", locale),
	}
}

// GrammarUnavailable creates a grammar unavailable error.
func GrammarUnavailable(cause error) *Error {
	return &Error{Code: ErrCodeGrammarUnavailable, Message: "date grammar could not be loaded", Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *Error {
	return &Error{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// Wrap wraps an existing error with a code.
func Wrap(cause error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if err, or any error it wraps, carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not coded.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return defaultCode
}

// AsError returns the first coded error in err's chain.
func AsError(err error) (*Error, bool) {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}
