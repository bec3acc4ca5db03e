package errors

import (
	stderrors "errors"
	"fmt"
)

// CorpusError is the structured error type for CorpusDB. It carries the
// classification the API layer needs to pick a status code and the logging
// layer needs to pick attributes.
type CorpusError struct {
	// Code is the unique error code (e.g., "ERR_301_LIBRARY_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, NotFound, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *CorpusError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CorpusError) Unwrap() error {
	return e.Cause
}

// Is matches two CorpusErrors by code, enabling errors.Is against
// sentinel instances.
func (e *CorpusError) Is(target error) bool {
	if t, ok := target.(*CorpusError); ok {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code this error maps to.
func (e *CorpusError) HTTPStatus() int {
	return httpStatusForCategory(e.Category)
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *CorpusError) WithDetail(key, value string) *CorpusError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new CorpusError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *CorpusError {
	return &CorpusError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Newf creates a new CorpusError with a formatted message and no cause.
func Newf(code string, format string, args ...any) *CorpusError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a CorpusError from an existing error.
// The error's message becomes the CorpusError message.
func Wrap(code string, err error) *CorpusError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates a not-found error for the given entity kind and id.
func NotFound(code, kind, id string) *CorpusError {
	return Newf(code, "%s %q not found", kind, id).WithDetail("id", id)
}

// ValidationError creates a payload validation error.
func ValidationError(message string) *CorpusError {
	return New(ErrCodeValidation, message, nil)
}

// StorageError creates a database-related error.
func StorageError(message string, cause error) *CorpusError {
	return New(ErrCodeStorage, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *CorpusError {
	return New(ErrCodeInternal, message, cause)
}

// AsCorpus unwraps err looking for a CorpusError anywhere in the chain.
func AsCorpus(err error) (*CorpusError, bool) {
	var ce *CorpusError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a CorpusError with Retryable flag set.
func IsRetryable(err error) bool {
	if ce, ok := err.(*CorpusError); ok {
		return ce.Retryable
	}
	return false
}

// GetCode extracts the error code from a CorpusError.
// Returns empty string if not a CorpusError.
func GetCode(err error) string {
	if ce, ok := err.(*CorpusError); ok {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from a CorpusError.
// Returns empty string if not a CorpusError.
func GetCategory(err error) Category {
	if ce, ok := err.(*CorpusError); ok {
		return ce.Category
	}
	return ""
}
