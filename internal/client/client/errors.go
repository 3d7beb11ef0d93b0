package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx response. Message is the server-supplied message
// when there is one, otherwise a generic description of the status.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// UserMessage is the server-supplied text, or "" when the server gave
// none and Message is only the generic status text.
func (e *APIError) UserMessage() string {
	if e.Message == genericMessage(e.Status) {
		return ""
	}
	return e.Message
}

// StatusMessage is the generic text for the response status.
func (e *APIError) StatusMessage() string {
	return genericMessage(e.Status)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status == http.StatusBadGateway, e.Status == http.StatusServiceUnavailable, e.Status == http.StatusGatewayTimeout:
		return ErrUnavailable
	case e.Status >= 500:
		return ErrServer
	default:
		return nil
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
