package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/client/views"
	"github.com/dmitrijs2005/toilettracker/internal/filex"
)

const timeLayout = "2006-01-02 15:04"

// Refresh reloads the view state. A failed refresh keeps whatever is shown.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.dataService.Refresh(ctx); err != nil {
		return a.reportRefreshError(ctx, err)
	}
	a.setMode(ModeOnline)
	return a.Progress(ctx)
}

func (a *App) reportRefreshError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Session expired, please log in again.")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		if _, ok := a.dataService.State().Snapshot(); ok {
			fmt.Fprintln(a.out, "Server unavailable, keeping the data shown.")
		} else {
			a.showCached(ctx)
		}
	default:
		fmt.Fprintln(a.out, "Refresh failed:", err)
	}
	return err
}

// snapshot returns the current view, telling the user when there is none.
func (a *App) snapshot() (models.Snapshot, bool) {
	snap, ok := a.dataService.State().Snapshot()
	if !ok {
		fmt.Fprintln(a.out, "Nothing loaded yet. Type 'refresh'.")
	}
	return snap, ok
}

func (a *App) offlineNote(snap models.Snapshot) {
	if a.dataService.State().Offline() {
		fmt.Fprintf(a.out, "(offline, data from %s)\n", snap.FetchedAt.In(a.loc).Format(timeLayout))
	}
}

// Progress prints the progress header with the visit streak.
func (a *App) Progress(ctx context.Context) error {
	snap, ok := a.snapshot()
	if !ok {
		return nil
	}
	a.offlineNote(snap)
	return views.RenderProgress(a.out, snap.Progress, models.Streak(snap.Entries, a.now().In(a.loc)))
}

func (a *App) List(ctx context.Context) error {
	snap, ok := a.snapshot()
	if !ok {
		return nil
	}
	a.offlineNote(snap)
	return views.RenderEntries(a.out, snap.Entries, a.loc)
}

// Map prints the map view, or writes it as GeoJSON when a file is given.
func (a *App) Map(ctx context.Context, args []string) error {
	snap, ok := a.snapshot()
	if !ok {
		return nil
	}

	if len(args) > 0 {
		data, err := views.MapGeoJSON(snap.Entries)
		if err != nil {
			fmt.Fprintln(a.out, "Export failed:", err)
			return err
		}
		if err := filex.WriteFileAtomic(args[0], data, 0o644); err != nil {
			fmt.Fprintln(a.out, "Export failed:", err)
			return err
		}
		fmt.Fprintf(a.out, "Map exported to %s\n", args[0])
		return nil
	}

	a.offlineNote(snap)
	return views.RenderMap(a.out, a.dataService.State().Center(), models.DefaultZoom, snap.Entries, a.loc)
}

func (a *App) Leaderboard(ctx context.Context) error {
	snap, ok := a.snapshot()
	if !ok {
		return nil
	}
	a.offlineNote(snap)
	return views.RenderLeaderboard(a.out, snap.Leaderboard)
}

// Stats prints request counters collected during this run.
func (a *App) Stats(ctx context.Context) error {
	sum, err := a.metrics.Summary()
	if err != nil {
		fmt.Fprintln(a.out, "Stats unavailable:", err)
		return err
	}
	return views.RenderStats(a.out, sum)
}
