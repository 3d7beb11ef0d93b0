// Package client is the favisend HTTP adapter and local database bootstrap.
//
// # Overview
//
//  1. Client is the marketplace API contract used by the services: auth,
//     guest email verification, payment status, purchases and checkout.
//  2. HTTPClient implements it over JSON/HTTP. Every request carries an
//     X-Request-ID, W3C trace context and, when available, a bearer token
//     taken from the context (WithBearer) or the configured TokenSource.
//  3. InitDatabase and RunMigrations open the local SQLite store and apply
//     the embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses become *APIError, whose Message is the server's
// "message" field or a generic fallback. APIError unwraps to ErrUnauthorized
// (401/403), ErrConflict (409), ErrUnavailable (502/503/504) or ErrServer
// (other 5xx). Transport failures and timeouts wrap ErrUnavailable. A
// cancelled caller context is returned as ctx.Err().
package client
