package snapshot

import (
	"context"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

type Repository interface {
	// Save replaces the stored snapshot with snap.
	Save(ctx context.Context, snap models.Snapshot) error

	// Load returns the stored snapshot, or nil when nothing was saved yet.
	Load(ctx context.Context) (*models.Snapshot, error)

	Clear(ctx context.Context) error
}
