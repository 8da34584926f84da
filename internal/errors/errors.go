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

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigMissing = "CONFIG_MISSING"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeTransport     = "TRANSPORT_ERROR"
	CodeEmptyResponse = "EMPTY_RESPONSE"
	CodeExtraction    = "EXTRACTION_ERROR"
	CodeDecode        = "DECODE_ERROR"
	CodeReadError     = "READ_ERROR"
	CodeWriteError    = "WRITE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigMissing(message string) *AppError {
	return New(CodeConfigMissing, message)
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func TransportError(provider string, cause error) *AppError {
	return &AppError{
		Code:    CodeTransport,
		Message: fmt.Sprintf("%s request failed", provider),
		Cause:   cause,
	}
}

func EmptyResponse(provider string) *AppError {
	return New(CodeEmptyResponse, fmt.Sprintf("%s returned an empty response", provider))
}

func ExtractionError(message string) *AppError {
	return New(CodeExtraction, message)
}

func DecodeError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDecode,
		Message: message,
		Cause:   cause,
	}
}

func ReadError(filename string, cause error) *AppError {
	return &AppError{
		Code:    CodeReadError,
		Message: fmt.Sprintf("could not read %s", filename),
		Cause:   cause,
	}
}

func WriteError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeWriteError,
		Message: message,
		Cause:   cause,
	}
}
