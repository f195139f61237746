package dbgg

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is returned before any network I/O when a required
// argument is missing.
type ValidationError struct {
	Op    string
	Field string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("dbgg: %s: %s is required", err.Op, err.Field)
}

// APIError represents a non-2xx response from the listing API. Body is the
// raw response body; Message is filled in when the body is a JSON object
// with a "message" key.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
	Message    string
}

func (err *APIError) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("dbgg: %s %s: HTTP %d %s: %s", err.Method, err.Path, err.StatusCode, err.Status, err.Message)
	}
	return fmt.Sprintf("dbgg: %s %s: HTTP %d %s", err.Method, err.Path, err.StatusCode, err.Status)
}

func IsValidation(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == status
}
