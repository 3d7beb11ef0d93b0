// Package storage persists the client's small key-value state (bearer token,
// guest access token, guest email) in the local SQLite database.
//
// It plays the role browser local storage plays for the web client: values
// survive restarts and are read on every authenticated request. Only the
// session store and the guest verification flow write to it.
package storage
