// Package services contains the application services of the toilettracker
// client.
//
//   - ViewState holds what the views render and a session generation that
//     lets late refresh results be discarded after a logout.
//   - Session owns the token: its persistence, the transport bearer header
//     and the cached snapshot.
//   - AuthService logs in (falling back to signup), logs out and restores a
//     stored session.
//   - DataService refreshes progress, entries and leaderboard together.
//   - EntryService logs new visits and toggles the golden bowl flag.
package services
