// Package errors defines the failure taxonomy for the Telescope MCP server.
package mcperrors

import (
	"encoding/json"
	"fmt"
)

// ErrorCategory classifies the type of error
type ErrorCategory string

const (
	// ClientError indicates the error was caused by the caller
	ClientError ErrorCategory = "CLIENT_ERROR"
	// ServerError indicates the error was caused internally
	ServerError ErrorCategory = "SERVER_ERROR"
	// StorageError indicates the error was caused by the database
	StorageError ErrorCategory = "STORAGE_ERROR"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Client errors
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	CodeNotFound         ErrorCode = "NOT_FOUND"

	// Storage errors
	CodeConnectionFailure ErrorCode = "CONNECTION_FAILURE"
	CodeQueryFailure      ErrorCode = "QUERY_FAILURE"

	// Server errors
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StructuredError represents a detailed error with category, code, and recovery suggestion
type StructuredError struct {
	Code       ErrorCode     `json:"code"`
	Category   ErrorCategory `json:"category"`
	Message    string        `json:"message"`
	Details    interface{}   `json:"details,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// ToJSON converts the error to JSON string
func (e *StructuredError) ToJSON() string {
	bytes, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"code":"%s","category":"%s","message":"%s"}`, e.Code, e.Category, e.Message)
	}
	return string(bytes)
}

// New creates a new structured error
func New(code ErrorCode, category ErrorCategory, message string) *StructuredError {
	return &StructuredError{
		Code:     code,
		Category: category,
		Message:  message,
	}
}

// WithDetails adds details to the error
func (e *StructuredError) WithDetails(details interface{}) *StructuredError {
	e.Details = details
	return e
}

// WithSuggestion adds a recovery suggestion to the error
func (e *StructuredError) WithSuggestion(suggestion string) *StructuredError {
	e.Suggestion = suggestion
	return e
}

// Common error constructors

// NewInvalidArgument creates an error for a parameter outside its allowed domain
func NewInvalidArgument(message string) *StructuredError {
	return New(CodeInvalidArgument, ClientError, message).
		WithSuggestion("Check the input parameters and try again")
}

// NewMissingParameter creates a missing parameter error
func NewMissingParameter(param string) *StructuredError {
	return New(CodeMissingParameter, ClientError, fmt.Sprintf("Required parameter '%s' is missing", param)).
		WithSuggestion(fmt.Sprintf("Provide the '%s' parameter", param))
}

// NewNotFound creates an error for a detail lookup that matched no row
func NewNotFound(resourceType, id string) *StructuredError {
	return New(CodeNotFound, ClientError, fmt.Sprintf("%s with ID '%s' not found", resourceType, id)).
		WithSuggestion("Verify the ID and try again")
}

// NewConnectionFailure creates an error for an unreachable database
func NewConnectionFailure(err error) *StructuredError {
	return New(CodeConnectionFailure, StorageError, fmt.Sprintf("Cannot reach the Telescope database: %v", err)).
		WithSuggestion("Check TELESCOPE_DB_HOST, TELESCOPE_DB_PORT and the configured credentials")
}

// NewQueryFailure creates an error for a statement the database rejected
func NewQueryFailure(operation string, err error) *StructuredError {
	return New(CodeQueryFailure, StorageError, fmt.Sprintf("Query failed during %s: %v", operation, err)).
		WithDetails(map[string]interface{}{"operation": operation}).
		WithSuggestion("The telescope_entries table may be missing or inaccessible")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *StructuredError {
	return New(CodeInternalError, ServerError, message).
		WithSuggestion("Try again or report the issue if it persists")
}
