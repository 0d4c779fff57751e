package xld

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the single error kind returned for failed API calls and
// failed request preconditions.
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// NewAPIError creates an APIError with the given message and status code
func NewAPIError(message string, statusCode int) *APIError {
	return &APIError{Message: message, StatusCode: statusCode}
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// AsAPIError reports whether err wraps an *APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is an *APIError carrying status 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// ConfigError is returned when a configuration value is missing or invalid.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}
