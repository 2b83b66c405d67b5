package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error.
type ErrorType string

const (
	// NotFoundError indicates a not found error.
	NotFoundError ErrorType = "NotFound"
	// InvalidInputError indicates an invalid input error.
	InvalidInputError ErrorType = "InvalidInput"
	// InternalError indicates an internal error.
	InternalError ErrorType = "Internal"
	// InvalidDataErr indicates a data validation error.
	InvalidDataErr ErrorType = "DataInvalid"
	// UnavailableErr indicates a collaborator (catalog, broker) could not be reached.
	UnavailableErr ErrorType = "Unavailable"
)

var (
	ErrNotImplemented = New(InternalError, "not implemented")
	ErrInvalidInput   = New(InvalidInputError, "invalid input")

	// ErrShortNumeric error for when a packed numeric is shorter than its fixed header.
	ErrShortNumeric = New(InvalidInputError, "packed numeric is shorter than its 4 byte header")
	// ErrOddNumericLength error for when a packed numeric does not hold a whole number of digits.
	ErrOddNumericLength = New(InvalidInputError, "packed numeric length must be even")
	// ErrSpecialWithDigits error for when a NaN or infinity carries digits or a display scale.
	ErrSpecialWithDigits = New(InvalidInputError, "special numeric value must not carry digits")
	ErrInvalidWidth      = New(InvalidInputError, "integer width must be 16, 32 or 64")
	ErrInvalidLiteral    = New(InvalidInputError, "invalid literal type")
	ErrInvalidOperator   = New(InvalidInputError, "invalid operator kind")

	ErrCatalogNotConfigured = New(InternalError, "operator catalog is not configured")
	ErrListenerNotReady     = New(InternalError, "invalidation listener not initialized")
	ErrListenerRunning      = New(InternalError, "invalidation listener already running")
	ErrListenerStopped      = New(InternalError, "invalidation listener stopped")

	ErrNumericOverflow = Data("numeric value does not fit in a 64 bit integer")
)

// TypedError represents an error with a specific type.
type TypedError struct {
	Type ErrorType
	Err  error
}

// Is returns true if err is, or wraps, a *TypedError whose Type is the one specified.
func Is(err error, typ ErrorType) bool {
	var e *TypedError
	if errors.As(err, &e) {
		return e.Type == typ
	}
	return false
}

// Error implements the error interface for TypedError.
func (e *TypedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TypedError) Unwrap() error {
	return e.Err
}

// New creates a new TypedError with the given error type and message.
func New(errorType ErrorType, message string) *TypedError {
	return &TypedError{Type: errorType, Err: errors.New(message)}
}

// Newf creates a new TypedError with the given error type and message.
func Newf(errorType ErrorType, message string, a ...any) *TypedError {
	return &TypedError{Type: errorType, Err: fmt.Errorf(message, a...)}
}

// NewInternal creates a new internal error with the given message.
func NewInternal(message string) *TypedError {
	return &TypedError{Type: InternalError, Err: errors.New(message)}
}

// NewInvalidDigit creates an error for a base-10000 digit outside [0, 9999].
func NewInvalidDigit(index int, digit uint16) *TypedError {
	return &TypedError{
		Type: InvalidInputError,
		Err:  fmt.Errorf("packed numeric digit %d is %d, want a value below 10000", index, digit),
	}
}

// NewUnknownHeader creates an error for a packed numeric header with an unrecognised sign or special tag.
func NewUnknownHeader(header uint16) *TypedError {
	return &TypedError{
		Type: InvalidInputError,
		Err:  fmt.Errorf("packed numeric header 0x%04x has an unknown sign tag", header),
	}
}

// Wrap creates a new TypedError by wrapping an existing error with an additional message.
func Wrap(errorType ErrorType, err error, message string) *TypedError {
	return &TypedError{Type: errorType, Err: fmt.Errorf("%s: %w", message, err)}
}

// Data creates a new invalid data error
func Data(message string, a ...any) *TypedError {
	return &TypedError{Type: InvalidDataErr, Err: fmt.Errorf(message, a...)}
}
