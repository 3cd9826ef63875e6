package models

import "github.com/dmitrijs2005/toilettracker/internal/common"

// Progress is the summary returned by GET /api/toilets/my-progress.
type Progress struct {
	Total      int     `json:"total"`
	Remaining  int     `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// LeaderboardEntry is one row of GET /api/toilets/leaderboard.
type LeaderboardEntry struct {
	Email string `json:"email"`
	Total int    `json:"total"`
}

// DisplayName hides the email domain.
func (l LeaderboardEntry) DisplayName() string {
	return common.EmailLocalPart(l.Email)
}

// Credentials is the body of the login and signup requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the {message} body used by the toggle endpoint and by
// error responses.
type MessageResponse struct {
	Message string `json:"message"`
}
