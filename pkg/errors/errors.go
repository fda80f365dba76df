package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Type registry errors
	ErrDuplicateType ErrorCode = "DUPLICATE_TYPE"
	ErrUnknownType   ErrorCode = "UNKNOWN_TYPE"

	// Factory and lifecycle errors
	ErrDuplicateInstance   ErrorCode = "DUPLICATE_INSTANCE"
	ErrUnresolvedReference ErrorCode = "UNRESOLVED_REFERENCE"
	ErrPhaseViolation      ErrorCode = "PHASE_VIOLATION"
	ErrComponentPhase      ErrorCode = "COMPONENT_PHASE"
	ErrMissingParam        ErrorCode = "MISSING_PARAM"
	ErrBadParam            ErrorCode = "BAD_PARAM"

	// Toolbox errors
	ErrDuplicateToolbox  ErrorCode = "DUPLICATE_TOOLBOX"
	ErrUnknownToolbox    ErrorCode = "UNKNOWN_TOOLBOX"
	ErrUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"
	ErrCyclicDependency  ErrorCode = "CYCLIC_DEPENDENCY"
	ErrToolboxInit       ErrorCode = "TOOLBOX_INIT"
	ErrToolboxFinalise   ErrorCode = "TOOLBOX_FINALISE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Journal errors
	ErrFirewall ErrorCode = "FIREWALL"
)

// CoreError represents a structured error with code and details
type CoreError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CoreError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CoreError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a CoreError carrying the same code.
func (e *CoreError) Is(target error) bool {
	var targetErr *CoreError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CoreError with the given code and message
func New(code ErrorCode, message string) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CoreError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CoreError {
	return &CoreError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CoreError
func Wrap(err error, code ErrorCode, message string) *CoreError {
	if err == nil {
		return nil
	}
	return &CoreError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CoreError {
	if err == nil {
		return nil
	}
	return &CoreError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CoreError) WithDetail(key string, value interface{}) *CoreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if any error in the tree has a specific error code.
// Wrapped and joined errors are inspected too, so a COMPONENT_PHASE error
// that wraps an UNRESOLVED_REFERENCE matches both codes.
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, &CoreError{Code: code})
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CoreError
func GetErrorCode(err error) ErrorCode {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CoreError
func GetErrorDetails(err error) map[string]interface{} {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Details
	}
	return nil
}

// Detail returns a single detail value from the outermost CoreError.
func Detail(err error, key string) (interface{}, bool) {
	details := GetErrorDetails(err)
	if details == nil {
		return nil, false
	}
	v, ok := details[key]
	return v, ok
}
