package client

import (
	"context"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

// Client is the toilet tracker API contract.
type Client interface {
	Close() error

	// SetToken replaces the bearer token used by authenticated calls.
	// An empty token removes the Authorization header.
	SetToken(token string)

	Login(ctx context.Context, creds models.Credentials) (string, error)
	Signup(ctx context.Context, creds models.Credentials) (string, error)

	Progress(ctx context.Context) (*models.Progress, error)
	Entries(ctx context.Context) ([]models.Entry, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)

	CreateEntry(ctx context.Context, entry models.NewEntry) (*models.Entry, error)
	ToggleGolden(ctx context.Context, id string) (string, error)

	Ping(ctx context.Context) error
}
