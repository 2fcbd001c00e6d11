package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error returns the server-provided message, or "Error <status>" when the
// body carried none.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Error %d", e.Status)
}

// Unwrap maps the status code to a category sentinel.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 400 && e.Status < 500:
		return ErrValidation
	default:
		return ErrServer
	}
}

// newAPIError builds an APIError from a response body of the form
// {"message": "..."}. Bodies that are not JSON fall back to the generic text.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	return &APIError{Status: status, Message: payload.Message}
}
