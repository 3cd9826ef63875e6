// Package cli provides the interactive Toilet Tracker command-line client.
//
// It wires configuration, the local SQLite state store, the REST API client
// and the services, then runs a REPL. Typical flow: reuse a stored session
// or prompt for credentials, refresh the data, start a background
// connectivity watcher, and execute user commands.
//
// Key features:
//   - Login with automatic signup, Logout
//   - Progress, entry list, map and leaderboard views
//   - Logging a visit from the device position or a manual form
//   - Golden Bowl toggling
//   - Offline mode backed by the last cached snapshot
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
