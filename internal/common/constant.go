// Package common contains shared constants and sentinel errors used across
// favisend components.
package common

// AuthorizationHeaderName carries the bearer credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName correlates a client request with server logs.
const RequestIDHeaderName = "X-Request-ID"

// Keys of the persisted client storage. They mirror the browser storage
// layout of the web client so both clients agree on naming.
const (
	StorageKeyAuthToken   = "authToken"
	StorageKeyAccessToken = "accessToken"
	StorageKeyUserEmail   = "userEmail"
)
