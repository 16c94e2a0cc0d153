// Package cli provides the interactive Odoo command-line client.
//
// It wires configuration, local storage, the session client and the
// application services into a REPL. Typical flow: configure the server
// address (typed or scanned from a QR payload), log in to a database, then
// browse and edit records.
//
// Key features:
//   - Server address setup, QR payload parsing and server info
//   - Login / Logout / session status
//   - Contacts: list (cached), search, create, edit, delete
//   - Leads, employees, countries and languages listings
//   - Branding and module order preferences
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
