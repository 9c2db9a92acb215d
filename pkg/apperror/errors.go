// Package apperror provides a structured way to handle application errors
// with specific codes and additional details, and maps fatal errors to
// process exit codes at the CLI boundary.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Input
	CodeMissingFile      ErrorCode = "MISSING_FILE"
	CodeParse            ErrorCode = "PARSE_ERROR"
	CodeBadToken         ErrorCode = "BAD_TOKEN"
	CodeNegativeCapacity ErrorCode = "NEGATIVE_CAPACITY"
	CodeInvalidConfig    ErrorCode = "INVALID_CONFIG"

	// Topology
	CodeDisconnectedAgent ErrorCode = "DISCONNECTED_AGENT"
	CodeEmptyGroup        ErrorCode = "EMPTY_GROUP"
	CodeLeaderlessGroup   ErrorCode = "LEADERLESS_GROUP"

	// Migration
	CodeNoDestination        ErrorCode = "NO_ELIGIBLE_DESTINATION"
	CodeUnreachableMigration ErrorCode = "UNREACHABLE_MIGRATION"
	CodeUnknownAlgorithm     ErrorCode = "UNKNOWN_ALGORITHM"

	// Output
	CodeReport ErrorCode = "REPORT_ERROR"

	CodeInternal ErrorCode = "INTERNAL"
)

// AppError is an application error with a code and optional details.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Details map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key/value pair and returns the error for chaining.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the error code, or CodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ExitCode maps an error to a process exit code. Fatal input problems
// (missing files, non-numeric tokens, negative capacities) get distinct
// codes so batch wrappers can tell them apart.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case CodeMissingFile:
		return 2
	case CodeBadToken, CodeNegativeCapacity:
		return 3
	case CodeInvalidConfig:
		return 4
	case CodeReport:
		return 5
	default:
		return 1
	}
}
