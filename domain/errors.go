package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures. Everything except ErrCodeDiscovery is
// contained inside a run.
type ErrorCode string

const (
	ErrCodeFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrCodeReadError     ErrorCode = "PARSE_OR_READ_ERROR"
	ErrCodeAnalyzer      ErrorCode = "ANALYZER_ERROR"
	ErrCodeLinter        ErrorCode = "LINTER_ERROR"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeDiscovery     ErrorCode = "DISCOVERY_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeOutput        ErrorCode = "OUTPUT_ERROR"
)

// DomainError is the typed error returned across package boundaries
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err is, or wraps, a DomainError with the given code
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return &DomainError{Code: ErrCodeFileNotFound, Message: fmt.Sprintf("file not found: %s", path), Cause: cause}
}

// NewReadError creates an error for content that could not be obtained
func NewReadError(path string, cause error) error {
	return &DomainError{Code: ErrCodeReadError, Message: fmt.Sprintf("failed to read %s", path), Cause: cause}
}

// NewAnalyzerError creates an error for an analyzer failing on one file
func NewAnalyzerError(analyzerID, path string, cause error) error {
	return &DomainError{Code: ErrCodeAnalyzer, Message: fmt.Sprintf("analyzer %s failed on %s", analyzerID, path), Cause: cause}
}

// NewLinterError creates an external linter error
func NewLinterError(message string, cause error) error {
	return &DomainError{Code: ErrCodeLinter, Message: message, Cause: cause}
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return &DomainError{Code: ErrCodeConfiguration, Message: message, Cause: cause}
}

// NewDiscoveryError creates the only error class that aborts a run
func NewDiscoveryError(message string, cause error) error {
	return &DomainError{Code: ErrCodeDiscovery, Message: message, Cause: cause}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return &DomainError{Code: ErrCodeInvalidInput, Message: message, Cause: cause}
}

// NewOutputError creates an error for report or baseline persistence
func NewOutputError(message string, cause error) error {
	return &DomainError{Code: ErrCodeOutput, Message: message, Cause: cause}
}
