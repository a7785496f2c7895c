package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeMissingTable indicates a required source table is absent or empty
	ErrTypeMissingTable ErrorType = "MISSING_TABLE"
	// ErrTypeSchemaGap indicates an optional column is absent from a source table
	ErrTypeSchemaGap ErrorType = "SCHEMA_GAP"
	// ErrTypeCoercion indicates a cell value failed date or numeric coercion
	ErrTypeCoercion ErrorType = "COERCION"
	// ErrTypeParsing indicates a source file could not be read or parsed
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeConfig indicates invalid configuration
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeNotFound indicates a lookup produced no result
	ErrTypeNotFound ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// MissingTableError creates an error for an absent or empty source table.
// Callers are expected to log it and degrade to an empty view, never to
// propagate it as a run failure.
func MissingTableError(table string) *AppError {
	return NewAppError(ErrTypeMissingTable, fmt.Sprintf("source table %q is missing or empty", table), nil).
		WithContext("table", table)
}

// SchemaGapError creates an error for an optional column absent from a table
func SchemaGapError(table, column string) *AppError {
	return NewAppError(ErrTypeSchemaGap, fmt.Sprintf("table %q has no column %q", table, column), nil).
		WithContext("table", table).
		WithContext("column", column)
}

// ParsingError creates an error for an unreadable source file
func ParsingError(path string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, fmt.Sprintf("failed to parse %q", path), cause).
		WithContext("path", path)
}

// ConfigError creates an error for invalid configuration
func ConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
