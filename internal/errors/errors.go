package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the structured error type for tmbliss.
type Error struct {
	// Code is the unique error code (e.g., "ERR_202_PATH_INACCESSIBLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is derived from the code.
	Category Category

	// Path is the filesystem path the error refers to, if any.
	Path string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable hint for the user.
	Suggestion string
}

// Error implements the error interface.
// Only the message is returned so marker failures read naturally when wrapped
// ("Can't process path /x: File inaccessible").
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code, so errors.Is works against the
// sentinel values below.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithPath records the path the error refers to.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// New creates a new Error with the given code and message.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Annotate prefixes err's message with context, keeping the code, path and
// suggestion of the first *Error in its chain. Errors without a code become
// ErrCodeInternal.
func Annotate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	code := GetCode(err)
	if code == "" {
		code = ErrCodeInternal
	}
	annotated := New(code, fmt.Sprintf(format, args...)+": "+err.Error(), err)

	var inner *Error
	if stderrors.As(err, &inner) {
		annotated.Path = inner.Path
		annotated.Suggestion = inner.Suggestion
	}
	return annotated
}

// Sentinels for errors.Is comparisons.
var (
	ErrPathNotFound     = &Error{Code: ErrCodePathNotFound}
	ErrPathInaccessible = &Error{Code: ErrCodePathInaccessible}
	ErrMarkerUnknown    = &Error{Code: ErrCodeMarkerUnknown}
	ErrServiceLocked    = &Error{Code: ErrCodeServiceLocked}
)

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *Error {
	return New(ErrCodeInvalidInput, message, cause)
}

// PathNotFound creates the error reported when a marker operation targets a
// path that does not exist.
func PathNotFound(path string, cause error) *Error {
	return New(ErrCodePathNotFound, "File not found", cause).WithPath(path)
}

// PathInaccessible creates the error reported when permissions prevent a
// marker read or write.
func PathInaccessible(path string, cause error) *Error {
	return New(ErrCodePathInaccessible, "File inaccessible", cause).WithPath(path)
}

// MarkerUnknown creates the error reported for an unmapped OS status.
func MarkerUnknown(path, status string, cause error) *Error {
	return New(ErrCodeMarkerUnknown, fmt.Sprintf("Unknown error: %s", status), cause).WithPath(path)
}

// GetCode extracts the error code from the first *Error in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetCategory extracts the category from the first *Error in the chain.
func GetCategory(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}
