package models

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	BadRequestError     ErrorCode = "BadRequest"
	InternalError       ErrorCode = "InternalError"
	NotFoundError       ErrorCode = "NotFound"
	ValidationFailed    ErrorCode = "ValidationFailed"
	ConfigurationError  ErrorCode = "ConfigurationError"
	UpstreamUnavailable ErrorCode = "UpstreamUnavailable"
)

type HasHint interface {
	// Hint A human-readable string that advises the user on how they might solve the error.
	Hint() string
}

type HasDetails interface {
	// Details An extra set of metadata provided by the error.
	Details() map[string]string
}

type HasCode interface {
	Code() ErrorCode
}

// HasHTTPStatusCode is implemented by errors that know which HTTP status
// they should be reported with.
type HasHTTPStatusCode interface {
	HTTPStatusCode() int
}

// BaseError is the error type used across testgate. Besides the message it
// carries a code, the component that raised it, the HTTP status to report it
// with, a hint for the operator and free-form details.
type BaseError struct {
	message        string
	hint           string
	component      string
	httpStatusCode int
	details        map[string]string
	code           ErrorCode
	cause          error
}

// IsBaseError checks if an error is a BaseError.
func IsBaseError(err error) bool {
	var baseError *BaseError
	return errors.As(err, &baseError)
}

// NewBaseError creates a new BaseError with only the message set.
func NewBaseError(format string, a ...any) *BaseError {
	return &BaseError{
		component: "TestGate",
		message:   fmt.Sprintf(format, a...),
	}
}

// WithHint sets the hint and returns the error for chaining.
func (e *BaseError) WithHint(hint string) *BaseError {
	e.hint = hint
	return e
}

// WithDetails sets the details and returns the error for chaining.
func (e *BaseError) WithDetails(details map[string]string) *BaseError {
	e.details = details
	return e
}

// WithCode sets the code and returns the error for chaining.
func (e *BaseError) WithCode(code ErrorCode) *BaseError {
	e.code = code
	return e
}

// WithHTTPStatusCode sets the HTTP status the error is reported with.
func (e *BaseError) WithHTTPStatusCode(statusCode int) *BaseError {
	e.httpStatusCode = statusCode
	return e
}

// WithComponent sets the component that raised the error.
func (e *BaseError) WithComponent(component string) *BaseError {
	e.component = component
	return e
}

// WithCause records the underlying error, available through errors.Unwrap.
func (e *BaseError) WithCause(cause error) *BaseError {
	e.cause = cause
	return e
}

func (e *BaseError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

func (e *BaseError) Hint() string {
	return e.hint
}

func (e *BaseError) Details() map[string]string {
	return e.details
}

// Code returns a unique code to identify the error
func (e *BaseError) Code() ErrorCode {
	return e.code
}

func (e *BaseError) Component() string {
	return e.component
}

// HTTPStatusCode returns the HTTP status for the error, or 0 if none was set.
func (e *BaseError) HTTPStatusCode() int {
	return e.httpStatusCode
}
