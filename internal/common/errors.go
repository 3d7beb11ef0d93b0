// Package common defines shared constants and sentinel errors used across
// client layers of favisend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors (caught before any network call).
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Flow control.
	ErrBusy            = errors.New("another operation is in progress")
	ErrRequestInFlight = errors.New("request already in flight")
	ErrNoCredentials   = errors.New("no credentials available")
	ErrAccountExists   = errors.New("account already exists")
	ErrDownloadFailed  = errors.New("could not start download")

	// Guest verification.
	ErrCodeNotSent  = errors.New("could not send the verification code, please try again")
	ErrCodeRejected = errors.New("the verification code is incorrect")
)

// UserMessage returns text suitable for showing to a person. A message
// supplied by the server (any error implementing UserMessage() string with
// a non-empty result) wins; then the sentinel's own text; then the generic
// text of the response status (StatusMessage() string).
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}

	switch {
	case errors.Is(err, ErrTokenExpired), errors.Is(err, ErrInvalidToken):
		return "your session has expired, please log in again"
	case errors.Is(err, ErrBusy), errors.Is(err, ErrRequestInFlight):
		return "please wait for the current request to finish"
	case errors.Is(err, ErrNoCredentials):
		return "verify your email or log in first"
	case errors.Is(err, ErrAccountExists):
		return "this username or email may already be in use"
	case errors.Is(err, ErrDownloadFailed):
		return "could not start download"
	case errors.Is(err, ErrCodeNotSent):
		return ErrCodeNotSent.Error()
	case errors.Is(err, ErrCodeRejected):
		return ErrCodeRejected.Error()
	}

	var sm interface{ StatusMessage() string }
	if errors.As(err, &sm) {
		if msg := sm.StatusMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// ErrSuperseded is returned by a session operation whose result was
// discarded because a logout (or another session change) happened while it
// was in flight.
var ErrSuperseded = errors.New("session changed while the request was in flight")
