package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeUnsupportedFile ErrorType = "UNSUPPORTED_FILE_TYPE"
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
	ErrTypeProcessing      ErrorType = "PROCESSING"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypeConfig          ErrorType = "CONFIG"
)

// Client-facing messages for the domain errors
const (
	MsgUnsupportedFileType = "Unsupported file type. Please upload CSV or Excel files."
	MsgDatasetNotFound     = "Dataset not found"
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

// Detail is the message shown to API clients
func (e *AppError) Detail() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
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

// NewUnsupportedFileTypeError reports an upload whose extension is not CSV or Excel
func NewUnsupportedFileTypeError(filename string) *AppError {
	return NewAppError(ErrTypeUnsupportedFile, MsgUnsupportedFileType, nil).
		WithContext("filename", filename)
}

// NewDatasetNotFoundError reports an unknown dataset id
func NewDatasetNotFoundError(id string) *AppError {
	return NewAppError(ErrTypeNotFound, MsgDatasetNotFound, nil).
		WithContext("dataset_id", id)
}

// NewProcessingError creates an error for failures while parsing or analyzing data
func NewProcessingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeProcessing, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == errType
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return IsType(err, ErrTypeNotFound)
}

// IsUnsupportedFileType reports whether err is an unsupported upload
func IsUnsupportedFileType(err error) bool {
	return IsType(err, ErrTypeUnsupportedFile)
}
