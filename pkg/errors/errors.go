package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common application errors
var (
	ErrNotFound        = NewNotFoundError("resource", "resource not found")
	ErrInvalidArgument = NewValidationError("", "invalid argument")
	ErrInternal        = NewInternalError("internal server error", nil)
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// GRPCStatus returns the gRPC status for this error
func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *NotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

// ConnectionError reports that a database session could not be established
// or was lost: unreachable host, rejected credentials, unknown database.
type ConnectionError struct {
	Op  string
	Err error
}

// NewConnectionError creates a new connection error for the given operation
func NewConnectionError(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Err: err}
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: database connection failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: database connection failed", e.Op)
}

// Unwrap returns the wrapped driver error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error.
// The driver message stays out of the status.
func (e *ConnectionError) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, "database unavailable")
}

// QueryError reports that a statement failed on an established session.
type QueryError struct {
	Query string
	Err   error
}

// NewQueryError creates a new query error
func NewQueryError(query string, err error) *QueryError {
	return &QueryError{Query: query, Err: err}
}

// Error implements the error interface
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query %q failed: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("query %q failed", e.Query)
}

// Unwrap returns the wrapped driver error
func (e *QueryError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *QueryError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, "query failed")
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *InternalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Message)
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}

// IsConnection reports whether err (or anything it wraps) is a ConnectionError.
func IsConnection(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// IsQuery reports whether err (or anything it wraps) is a QueryError.
func IsQuery(err error) bool {
	var target *QueryError
	return errors.As(err, &target)
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Code returns the gRPC code carried by err, codes.Unknown if it carries none.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var s GRPCStatuser
	if errors.As(err, &s) {
		return s.GRPCStatus().Code()
	}
	return codes.Unknown
}
