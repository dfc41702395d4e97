package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors so callers can branch on the
// condition without string matching.
type ErrorType string

const (
	// ErrTypeSourceNotFound indicates the backing workbook for a station
	// does not exist.
	ErrTypeSourceNotFound ErrorType = "SOURCE_NOT_FOUND"
	// ErrTypeSchema indicates the workbook parsed but no recognized
	// timestamp column was found, or a timestamp cell failed to parse.
	ErrTypeSchema ErrorType = "SCHEMA"
	// ErrTypeInvalidInput indicates a structurally malformed table was
	// handed to the deriver directly, bypassing the loader.
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	// ErrTypeParsing indicates a low-level workbook read failure.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeNotFound indicates an unknown station or chart was requested.
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	// ErrTypeValidation indicates a rejected request parameter.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeConfig indicates invalid application configuration.
	ErrTypeConfig ErrorType = "CONFIG"
)

// AppError is the application error carried across the pipeline. It keeps
// the classification, a human-readable message and the wrapped cause.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair for logging.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a classified application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err (or anything it wraps) is an AppError of the
// given classification.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// NewSourceNotFoundError creates a missing-workbook error.
func NewSourceNotFoundError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSourceNotFound, message, cause)
}

// NewSchemaError creates a schema error for an unrecognized or unparseable
// timestamp column.
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// NewInvalidInputError creates an error for a structurally malformed table.
func NewInvalidInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInvalidInput, message, cause)
}

// NewParsingError creates a workbook read error.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNotFoundError creates a not found error for a named resource.
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewValidationError creates a request validation error.
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
