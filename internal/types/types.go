// Package types contains shared types for the markup engine.
package types

import "fmt"

// Config holds engine-level settings shared by the command-line tools.
type Config struct {
	// DefaultLanguage is the BCP 47 tag used for localized section labels
	// when the caller does not provide one.
	DefaultLanguage string `yaml:"default_language"`
	// MaxBlankLines is the maximum run of blank lines the sanitizer keeps.
	MaxBlankLines int `yaml:"max_blank_lines"`
	// ExtraEchoPrefixes adds instruction-echo prefixes to the sanitizer's
	// built-in list.
	ExtraEchoPrefixes []string `yaml:"extra_echo_prefixes"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// LogFilePath enables file logging when non-empty.
	LogFilePath string `yaml:"log_file_path"`
}

// ErrorCode classifies engine errors
type ErrorCode string

const (
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrEncoding     ErrorCode = "ENCODING_ERROR"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrPDFCheck     ErrorCode = "PDF_CHECK_ERROR"
)

// AppError is the error type returned at the engine's I/O edges. The repair
// and transpilation passes themselves are total and never produce one.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}
