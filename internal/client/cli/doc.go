// Package cli provides the interactive event booking command-line client.
//
// It wires configuration, the local session database, the authenticated API
// client and the domain services behind a small REPL. Anyone can browse
// events; booking requires a login and event management requires the
// ROLE_ADMIN role.
//
// The App doubles as the API client's Navigator: its location is the command
// being run, and when the session ends the next prompt asks for credentials
// again. After a successful login the location that was interrupted is
// reported back to the user.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
