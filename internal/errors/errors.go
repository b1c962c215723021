package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard application errors
var (
	ErrEmptyInput   = errors.New("input is empty or contains only whitespace")
	ErrFileNotFound = errors.New("file not found")
	ErrSameFile     = errors.New("input and output refer to the same file")
	ErrTOMLTopLevel = errors.New("TOML documents must have a table at the top level")
	ErrTOMLNull     = errors.New("TOML has no null value")
	ErrTrailingData = errors.New("unexpected data after the first document")
	ErrNonFinite    = errors.New("NaN and infinite numbers cannot be represented")
	ErrKeyCollision = errors.New("two keys map to the same name")
	ErrTooDeep      = errors.New("document is nested too deeply")
	ErrAliasBomb    = errors.New("document contains excessive aliasing")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeUnknownFormat     ErrorType = "unknown_format"
	ErrorTypeDecode            ErrorType = "decode"
	ErrorTypeEncode            ErrorType = "encode"
	ErrorTypeIO                ErrorType = "io"
	ErrorTypeConfig            ErrorType = "config"
	ErrorTypeTransform         ErrorType = "transform"
)

// AppError is an application-specific error with context.
// Format names the data format involved, if any.
type AppError struct {
	Type    ErrorType
	Message string
	Format  string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	prefix := string(e.Type)
	if e.Format != "" {
		prefix = fmt.Sprintf("%s (%s)", e.Type, e.Format)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsType reports whether any error in err's chain is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	return errors.Is(err, &AppError{Type: t})
}

// NewUnsupportedFormatError reports a format name outside json, toml and yaml.
func NewUnsupportedFormatError(name string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnsupportedFormat,
		Message: fmt.Sprintf("unsupported format %q (want json, toml or yaml)", name),
	}
}

// NewUnknownFormatError reports a path whose extension maps to no format.
func NewUnknownFormatError(path string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnknownFormat,
		Message: fmt.Sprintf("cannot infer format of '%s' from its extension", path),
	}
}

// NewDecodeError creates a new error for source content that does not parse
func NewDecodeError(format, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDecode,
		Message: message,
		Format:  format,
		Err:     err,
	}
}

// NewEncodeError creates a new error for documents the target cannot hold
func NewEncodeError(format, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeEncode,
		Message: message,
		Format:  format,
		Err:     err,
	}
}

// NewIOError creates a new error related to reading or writing files
func NewIOError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewTransformError creates a new error raised while rewriting a document
func NewTransformError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransform,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		detail := appErr.Message
		if appErr.Err != nil {
			detail = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
		switch appErr.Type {
		case ErrorTypeUnsupportedFormat:
			return fmt.Sprintf("Unsupported format: %s", detail)
		case ErrorTypeUnknownFormat:
			return fmt.Sprintf("Unknown format: %s (use --input-format)", detail)
		case ErrorTypeDecode:
			return fmt.Sprintf("%s decode error: %s", strings.ToUpper(appErr.Format), detail)
		case ErrorTypeEncode:
			return fmt.Sprintf("%s encode error: %s", strings.ToUpper(appErr.Format), detail)
		case ErrorTypeIO:
			return fmt.Sprintf("I/O error: %s", detail)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", detail)
		case ErrorTypeTransform:
			return fmt.Sprintf("Transform error: %s", detail)
		default:
			return fmt.Sprintf("Error: %s", detail)
		}
	}

	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty."
	}

	return fmt.Sprintf("Error: %v", err)
}
