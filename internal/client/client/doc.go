// Package client contains the client-side building blocks that talk to the
// toilet tracker backend and keep local state.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     the seven REST endpoints: Login, Signup, Progress, Entries,
//     Leaderboard, CreateEntry and ToggleGolden, plus Ping.
//  2. A concrete REST implementation (see HTTPClient) that attaches the
//     bearer token and a request ID to every call and maps HTTP status codes
//     to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database migrated with embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrInvalidCredentials and
// ErrNotLoggedIn. Server-side failures are returned as *APIError, which
// keeps the server's message for display (see MessageOf).
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation and deadlines.
package client
