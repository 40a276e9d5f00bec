package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorKind tags a loan-data failure so callers can branch on it.
type ErrorKind string

const (
	KindMissingRequiredField ErrorKind = "missing_required_field"
	KindSchemaViolation      ErrorKind = "schema_violation"
	KindOutOfRange           ErrorKind = "out_of_range"
)

// LoanError is a fatal condition found while mapping, validating, or
// scoring a loan record.
type LoanError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Cause   error
}

func (e *LoanError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %s): %s", e.Kind, e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LoanError) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.FromError convert a LoanError without losing its kind.
func (e *LoanError) GRPCStatus() *status.Status {
	code := codes.InvalidArgument
	switch e.Kind {
	case KindSchemaViolation:
		code = codes.FailedPrecondition
	case KindOutOfRange:
		code = codes.OutOfRange
	}
	return status.New(code, e.Error())
}

func MissingFieldError(field string) *LoanError {
	return &LoanError{
		Kind:    KindMissingRequiredField,
		Field:   field,
		Message: fmt.Sprintf("%s is required but not found", field),
	}
}

func SchemaViolationError(field, message string, cause error) *LoanError {
	return &LoanError{Kind: KindSchemaViolation, Field: field, Message: message, Cause: cause}
}

func OutOfRangeError(field string, value any, message string) *LoanError {
	return &LoanError{
		Kind:    KindOutOfRange,
		Field:   field,
		Message: fmt.Sprintf("%v %s", value, message),
	}
}

// KindError rebuilds a LoanError from a recorded {field, error_type,
// message} issue. Unknown error types count as schema violations.
func KindError(errorType, field, message string) *LoanError {
	switch kind := ErrorKind(errorType); kind {
	case KindMissingRequiredField, KindOutOfRange:
		return &LoanError{Kind: kind, Field: field, Message: message}
	default:
		return SchemaViolationError(field, message, nil)
	}
}

// IsKind reports whether err (or anything it wraps) is a LoanError of kind.
func IsKind(err error, kind ErrorKind) bool {
	var le *LoanError
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}
