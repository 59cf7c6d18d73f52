package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing               ErrorType = "PARSING"
	ErrTypeStorage               ErrorType = "STORAGE"
	ErrTypeValidation            ErrorType = "VALIDATION"
	ErrTypeNotFound              ErrorType = "NOT_FOUND"
	ErrTypeConfig                ErrorType = "CONFIG"
	ErrTypeMissingJoinKey        ErrorType = "MISSING_JOIN_KEY"
	ErrTypeUnassignedLocation    ErrorType = "UNASSIGNED_LOCATION"
	ErrTypeInsufficientVariation ErrorType = "INSUFFICIENT_VARIATION"
	ErrTypeDuplicateKey          ErrorType = "DUPLICATE_KEY"
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

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper constructors for the pipeline error taxonomy.

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewDuplicateKeyError marks a source table carrying more than one row for
// the same join key. Duplicate keys are fatal for the affected stage; they
// are never silently resolved by picking one row.
func NewDuplicateKeyError(table, key string) *AppError {
	return NewAppError(ErrTypeDuplicateKey,
		fmt.Sprintf("duplicate key %s in %s", key, table), nil).
		WithContext("table", table).
		WithContext("key", key)
}

// NewInsufficientVariationError marks a regression input whose fixed effects
// cannot be identified. The fit aborts instead of returning spurious
// coefficients.
func NewInsufficientVariationError(usableGroups int) *AppError {
	return NewAppError(ErrTypeInsufficientVariation,
		fmt.Sprintf("insufficient variation: %d year-month groups with >=2 complete observations, need at least 2", usableGroups),
		nil).WithContext("usable_groups", usableGroups)
}

// NewMissingJoinKeyError marks a key referenced on one side of a join that is
// absent on the other. The row is recorded and excluded, never defaulted.
func NewMissingJoinKeyError(table, key string) *AppError {
	return NewAppError(ErrTypeMissingJoinKey,
		fmt.Sprintf("key %s missing from %s", key, table), nil).
		WithContext("table", table).
		WithContext("key", key)
}

// NewUnassignedLocationError marks an HQ coordinate matching no county
// polygon.
func NewUnassignedLocationError(ticker string, lat, lon float64) *AppError {
	return NewAppError(ErrTypeUnassignedLocation,
		fmt.Sprintf("firm %s HQ (%.4f, %.4f) is outside all county polygons", ticker, lat, lon),
		nil).WithContext("ticker", ticker)
}
