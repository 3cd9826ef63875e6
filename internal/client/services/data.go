package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Refresh results passed to RefreshObserver.
const (
	RefreshOK           = "ok"
	RefreshStale        = "stale"
	RefreshUnauthorized = "unauthorized"
	RefreshFailed       = "error"
)

// RefreshObserver is notified once per refresh attempt.
type RefreshObserver interface {
	ObserveRefresh(result string)
}

type DataService interface {
	// Refresh fetches progress, entries and leaderboard concurrently and
	// replaces the view state only when all three succeed. An authorization
	// failure ends the session.
	Refresh(ctx context.Context) error

	// LoadCached shows the snapshot stored by the last successful refresh.
	LoadCached(ctx context.Context) (bool, error)

	State() *ViewState
}

type dataService struct {
	client   client.Client
	session  *Session
	observer RefreshObserver
	log      logging.Logger
	now      func() time.Time
}

// NewDataService builds a DataService. observer may be nil.
func NewDataService(c client.Client, session *Session, observer RefreshObserver, log logging.Logger) DataService {
	return &dataService{client: c, session: session, observer: observer, log: log, now: time.Now}
}

func (d *dataService) State() *ViewState {
	return d.session.State()
}

func (d *dataService) Refresh(ctx context.Context) error {
	state := d.session.State()
	gen, active := state.Generation()
	if !active || !d.session.LoggedIn() {
		return client.ErrNotLoggedIn
	}

	var (
		progress *models.Progress
		entries  []models.Entry
		board    []models.LeaderboardEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := d.client.Progress(gctx)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		progress = p
		return nil
	})
	g.Go(func() error {
		e, err := d.client.Entries(gctx)
		if err != nil {
			return fmt.Errorf("entries: %w", err)
		}
		entries = e
		return nil
	})
	g.Go(func() error {
		b, err := d.client.Leaderboard(gctx)
		if err != nil {
			return fmt.Errorf("leaderboard: %w", err)
		}
		board = b
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			d.observe(RefreshUnauthorized)
			ended, endErr := d.session.EndIf(ctx, gen)
			if endErr != nil {
				d.log.Error(ctx, "clear session after unauthorized refresh", "error", endErr)
			}
			if ended {
				d.log.Info(ctx, "session rejected by server, logged out")
			}
			return fmt.Errorf("refresh: %w", err)
		}
		d.observe(RefreshFailed)
		return fmt.Errorf("refresh: %w", err)
	}

	snap := models.Snapshot{
		Progress:    progress,
		Entries:     entries,
		Leaderboard: board,
		Center:      models.CenterFromEntries(entries, state.Center()),
		FetchedAt:   d.now(),
	}

	applied, err := d.session.Commit(ctx, gen, snap)
	if !applied {
		d.observe(RefreshStale)
		d.log.Debug(ctx, "discarded refresh of a previous session")
		return nil
	}
	d.observe(RefreshOK)
	if err != nil {
		d.log.Warn(ctx, "snapshot not cached", "error", err)
	}
	d.log.Debug(ctx, "refresh finished", "entries", len(entries), "leaderboard", len(board))
	return nil
}

func (d *dataService) LoadCached(ctx context.Context) (bool, error) {
	gen, active := d.session.State().Generation()
	if !active {
		return false, client.ErrNotLoggedIn
	}
	return d.session.LoadCached(ctx, gen)
}

func (d *dataService) observe(result string) {
	if d.observer != nil {
		d.observer.ObserveRefresh(result)
	}
}
