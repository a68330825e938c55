package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes.
//
// The pipeline's taxonomy: MALFORMED_DATASET is the only hard failure surfaced
// to callers; UPSTREAM_UNAVAILABLE and UNPARSABLE_RESPONSE are recovered
// locally via the fallback path; PERSISTENCE_FAILURE downgrades to a warning
// on the response so generated content is never lost.
const (
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeMalformedDataset    = "MALFORMED_DATASET"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeUnparsableResponse  = "UNPARSABLE_RESPONSE"
	CodePersistenceFailure  = "PERSISTENCE_FAILURE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// MalformedDataset reports a dataset that lacks the structure an analysis
// needs. The diagnostic should name what was expected versus what was found.
func MalformedDataset(diagnostic string) *AppError {
	return New(CodeMalformedDataset, diagnostic)
}

func UpstreamUnavailable(cause error) *AppError {
	return &AppError{
		Code:    CodeUpstreamUnavailable,
		Message: "generative AI endpoint unavailable",
		Cause:   cause,
	}
}

func PersistenceFailure(cause error) *AppError {
	return &AppError{
		Code:    CodePersistenceFailure,
		Message: "failed to persist analysis record",
		Cause:   cause,
	}
}
