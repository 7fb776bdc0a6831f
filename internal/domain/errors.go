package domain

import (
	"errors"
	"fmt"
)

// Error types for pipeline stage errors
type ErrorType string

const (
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeTransform  ErrorType = "transform"
	ErrorTypeWrite      ErrorType = "write"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
)

// StageError represents a stage-specific error with context. Validation
// mismatches are deliberately not errors; they are reported conditions
// carried on the ValidationReport.
type StageError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewError creates a new stage error
func NewError(errType ErrorType, message string, err error) *StageError {
	return &StageError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ExtractionError(message string, err error) *StageError {
	return NewError(ErrorTypeExtraction, message, err)
}

func TransformError(message string, err error) *StageError {
	return NewError(ErrorTypeTransform, message, err)
}

func WriteError(message string, err error) *StageError {
	return NewError(ErrorTypeWrite, message, err)
}

func ConfigError(message string, err error) *StageError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *StageError {
	return NewError(ErrorTypeIO, message, err)
}

// ErrorTypeOf reports the stage type of err, or "" when err is not a
// StageError.
func ErrorTypeOf(err error) ErrorType {
	var se *StageError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}
