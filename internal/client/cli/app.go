package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/config"
	"github.com/dmitrijs2005/toilettracker/internal/client/geo"
	"github.com/dmitrijs2005/toilettracker/internal/client/metrics"
	"github.com/dmitrijs2005/toilettracker/internal/client/services"
	"github.com/dmitrijs2005/toilettracker/internal/filex"
	"github.com/dmitrijs2005/toilettracker/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds one connectivity probe of the watcher.
const pingTimeout = 3 * time.Second

type App struct {
	config       *config.Config
	authService  services.AuthService
	dataService  services.DataService
	entryService services.EntryService
	metrics      *metrics.Manager
	log          logging.Logger
	db           *sql.DB

	reader *bufio.Reader
	out    io.Writer
	loc    *time.Location
	now    func() time.Time

	mu   sync.RWMutex
	mode Mode
}

// NewApp opens the local database and builds the API client and services
// described by c. Logs go to stderr, user output to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	if err := filex.EnsureParentDir(c.DBPath); err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	m := metrics.NewManager()

	apiClient, err := client.NewHTTPClient(c.APIURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithObserver(m),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	locator, err := geo.New(geo.Settings{
		Kind:      c.Locator,
		URL:       c.GeoURL,
		Latitude:  c.FixedLatitude,
		Longitude: c.FixedLongitude,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("locator: %w", err)
	}

	state := services.NewViewState()
	session := services.NewSession(apiClient, db, state, log)
	ds := services.NewDataService(apiClient, session, m, log)
	as := services.NewAuthService(apiClient, session, ds, log)
	es := services.NewEntryService(apiClient, session, ds, locator, c.GeoTimeout, log)

	return &App{
		config:       c,
		authService:  as,
		dataService:  ds,
		entryService: es,
		metrics:      m,
		log:          log,
		db:           db,
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		loc:          time.Local,
		now:          time.Now,
		mode:         ModeOnline,
	}, nil
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// setMode switches the connectivity mode and reports whether it changed.
func (a *App) setMode(mode Mode) bool {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
	return changed
}

func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

func (a *App) Close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "closing api client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(ctx, "closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.LoggedIn()
}

// StartOnlineStatusWatcher pings the API every interval until ctx is done and
// flips the mode accordingly. Coming back online while showing cached data
// triggers a refresh.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	if a.setMode(ModeOnline) && a.isLoggedIn() && a.dataService.State().Offline() {
		if err := a.dataService.Refresh(ctx); err != nil {
			a.log.Warn(ctx, "refresh after reconnect failed", "error", err)
		}
	}
}
