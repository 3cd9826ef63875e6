package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
)

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		if info, err := a.authService.WhoAmI(); err == nil && info.Email != "" {
			s = info.Email + " "
		}
	}
	s += string(a.Mode())
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the banner, resumes a stored session or asks for credentials,
// starts the connectivity watcher and blocks in the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Toilet Tracker CLI (type 'help' for commands)")

	if !a.resume(ctx) {
		_ = a.Login(ctx)
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
}

// resume reuses a stored session. If the server cannot be reached the cached
// snapshot is shown instead. It reports whether a session is active.
func (a *App) resume(ctx context.Context) bool {
	ok, err := a.authService.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "restoring session", "error", err)
		return false
	}
	if !ok {
		return false
	}

	if err := a.dataService.Refresh(ctx); err != nil {
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			fmt.Fprintln(a.out, "Session expired, please log in again.")
			return false
		case errors.Is(err, client.ErrUnavailable):
			a.setMode(ModeOffline)
			a.showCached(ctx)
		default:
			fmt.Fprintln(a.out, "Refresh failed:", err)
		}
	}

	_ = a.Progress(ctx)
	return true
}

// showCached loads the stored snapshot. It is used when the server is down.
func (a *App) showCached(ctx context.Context) {
	ok, err := a.dataService.LoadCached(ctx)
	switch {
	case err != nil:
		a.log.Warn(ctx, "loading cached snapshot", "error", err)
		fmt.Fprintln(a.out, "Server unavailable and no cached data could be read.")
	case !ok:
		fmt.Fprintln(a.out, "Server unavailable and nothing cached yet.")
	default:
		snap, _ := a.dataService.State().Snapshot()
		fmt.Fprintf(a.out, "Server unavailable, showing data from %s.\n",
			snap.FetchedAt.In(a.loc).Format(timeLayout))
	}
}
