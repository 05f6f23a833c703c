package apimodels

import (
	"github.com/authorizedtester/testgate/pkg/models"
)

// APIError is the JSON body testgate sends for its own errors, such as an
// unreachable upstream. Gate denials are not APIErrors: they go out with an
// empty body.
type APIError struct {
	// HTTPStatusCode is the http status code associated with this error.
	HTTPStatusCode int `json:"Status"`

	// Message is a short, human-readable description of the error.
	Message string `json:"Message"`

	// RequestID is the request ID of the request that caused the error.
	RequestID string `json:"RequestID"`

	// Code is the error code of the error.
	Code string `json:"Code"`

	// Component is the component that caused the error.
	Component string `json:"Component"`

	Hint string `json:"Hint,omitempty"`

	Details map[string]string `json:"Details,omitempty"`
}

// NewAPIError creates a new APIError with the given HTTP status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		HTTPStatusCode: statusCode,
		Message:        message,
		Details:        make(map[string]string),
	}
}

// Error implements the error interface, allowing APIError to be used as a standard Go error.
func (e *APIError) Error() string {
	return e.Message
}

// FromBaseError converts a models.BaseError to an APIError
func FromBaseError(err *models.BaseError) *APIError {
	return &APIError{
		HTTPStatusCode: err.HTTPStatusCode(),
		Message:        err.Error(),
		Code:           string(err.Code()),
		Component:      err.Component(),
		Hint:           err.Hint(),
		Details:        err.Details(),
	}
}
