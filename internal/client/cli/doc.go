// Package cli provides the interactive favisend command-line client.
//
// It wires configuration, local storage and the API services into a REPL.
// On start the stored account session is checked; then commands are read
// one per line until the user exits.
//
// Key features:
//   - Login / Register / Logout and profile edits for accounts
//   - Guest access by email: request an 8-digit code and redeem it
//   - Purchase listing and file download
//   - Payment verification after checkout, with manual re-checks
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
