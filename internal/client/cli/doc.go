// Package cli provides the interactive Syllabify command-line client.
//
// It wires configuration, the local session database, the API client and
// the auth service, then drives an interactive REPL. Startup shows the
// loading screen until the persisted session has been restored; after that
// the current screen is resolved through the route table on every
// navigation.
//
// Commands:
//   - login / logout
//   - setup (security questions)
//   - whoami
//   - go <path>, routes
//   - exit | quit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// ctx is cancelled.
package cli
