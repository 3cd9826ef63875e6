// Package views renders the client screens as plain text: login banner,
// progress, entry list, map and leaderboard. Every renderer writes to an
// io.Writer and holds no state.
package views
