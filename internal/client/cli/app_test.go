package cli

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/apitest"
	"github.com/dmitrijs2005/toilettracker/internal/client/config"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func stubNoTerminal(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}

func testConfig(srv *apitest.Server, dbPath string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.APIURL = srv.URL
	c.DBPath = dbPath
	c.LogLevel = "error"
	c.RequestTimeout = 5 * time.Second
	c.GeoTimeout = time.Second
	c.Locator = "fixed"
	c.FixedLatitude = 52.52
	c.FixedLongitude = 13.405
	return c
}

func newTestAppWith(t *testing.T, c *config.Config) (*App, *bytes.Buffer) {
	t.Helper()
	stubNoTerminal(t)

	a, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })

	out := &bytes.Buffer{}
	a.out = out
	a.loc = time.UTC
	a.reader = readerFromLines()
	return a, out
}

func newTestApp(t *testing.T, srv *apitest.Server) (*App, *bytes.Buffer) {
	t.Helper()
	return newTestAppWith(t, testConfig(srv, ":memory:"))
}

func loginAs(t *testing.T, a *App, out *bytes.Buffer, email string) {
	t.Helper()
	a.reader = readerFromLines(email, "pw")
	require.NoError(t, a.Login(context.Background()))
	require.True(t, a.isLoggedIn())
	out.Reset()
}

func newServer(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return srv
}

// ------------ tests ------------

func TestNewApp_BadLocator(t *testing.T) {
	srv := newServer(t)
	c := testConfig(srv, ":memory:")
	c.Locator = "satellite"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestNewApp_BadURL(t *testing.T) {
	srv := newServer(t)
	c := testConfig(srv, ":memory:")
	c.APIURL = "ftp://nowhere"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestSetMode_ReportsChange(t *testing.T) {
	srv := newServer(t)
	a, _ := newTestApp(t, srv)

	require.Equal(t, ModeOnline, a.Mode())
	require.False(t, a.setMode(ModeOnline))
	require.True(t, a.setMode(ModeOffline))
	require.Equal(t, ModeOffline, a.Mode())
}

func TestCheckOnline_FlipsMode(t *testing.T) {
	srv := newServer(t)
	a, _ := newTestApp(t, srv)
	ctx := context.Background()

	srv.Fail(apitest.RoutePing, http.StatusServiceUnavailable, "sleeping")
	a.checkOnline(ctx)
	require.Equal(t, ModeOffline, a.Mode())

	srv.Recover(apitest.RoutePing)
	a.checkOnline(ctx)
	require.Equal(t, ModeOnline, a.Mode())
}

func TestCheckOnline_RefreshesCachedView(t *testing.T) {
	srv := newServer(t)
	dbPath := filepath.Join(t.TempDir(), "state", "tracker.db")

	first, out := newTestAppWith(t, testConfig(srv, dbPath))
	loginAs(t, first, out, "dora@example.com")
	first.Close(context.Background())

	srv.Fail(apitest.RouteEntries, http.StatusBadGateway, "down")
	second, _ := newTestAppWith(t, testConfig(srv, dbPath))
	require.True(t, second.resume(context.Background()))
	require.True(t, second.dataService.State().Offline())

	srv.Recover(apitest.RouteEntries)
	second.checkOnline(context.Background())
	require.False(t, second.dataService.State().Offline())
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	srv := newServer(t)
	a, _ := newTestApp(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return srv.Hits(apitest.RoutePing) > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestGetStatus(t *testing.T) {
	srv := newServer(t)
	a, out := newTestApp(t, srv)

	require.Equal(t, "(online)", a.getStatus())

	loginAs(t, a, out, "alice@example.com")
	require.Equal(t, "(alice@example.com online)", a.getStatus())

	a.setMode(ModeOffline)
	require.Equal(t, "(alice@example.com offline)", a.getStatus())
}

func TestResume_NoStoredSession(t *testing.T) {
	srv := newServer(t)
	a, _ := newTestApp(t, srv)

	require.False(t, a.resume(context.Background()))
	require.Zero(t, srv.Hits(apitest.RouteProgress))
}

func TestResume_OnlineRefreshes(t *testing.T) {
	srv := newServer(t)
	dbPath := filepath.Join(t.TempDir(), "tracker.db")

	first, out := newTestAppWith(t, testConfig(srv, dbPath))
	loginAs(t, first, out, "erin@example.com")
	first.Close(context.Background())

	second, out := newTestAppWith(t, testConfig(srv, dbPath))
	require.True(t, second.resume(context.Background()))
	assert.Contains(t, out.String(), "0 / 400 Unique Toilets")
	assert.False(t, second.dataService.State().Offline())
}

func TestResume_OfflineShowsCache(t *testing.T) {
	srv := newServer(t)
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	srv.AddUser("fred@example.com", "pw")
	srv.SeedEntry("fred@example.com", models.Entry{
		Name:      "Museum",
		Location:  models.NewPoint(models.Coordinates{Latitude: 40.7, Longitude: -74}),
		VisitedAt: time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC),
	})

	first, out := newTestAppWith(t, testConfig(srv, dbPath))
	loginAs(t, first, out, "fred@example.com")
	first.Close(context.Background())

	srv.Fail(apitest.RouteProgress, http.StatusServiceUnavailable, "sleeping")
	second, out := newTestAppWith(t, testConfig(srv, dbPath))
	require.True(t, second.resume(context.Background()))

	assert.Contains(t, out.String(), "Server unavailable, showing data from")
	assert.Equal(t, ModeOffline, second.Mode())

	out.Reset()
	require.NoError(t, second.List(context.Background()))
	assert.Contains(t, out.String(), "(offline, data from")
	assert.Contains(t, out.String(), "Museum")
}

func TestResume_ExpiredSessionFromServer(t *testing.T) {
	srv := newServer(t)
	dbPath := filepath.Join(t.TempDir(), "tracker.db")

	first, out := newTestAppWith(t, testConfig(srv, dbPath))
	loginAs(t, first, out, "gus@example.com")
	first.Close(context.Background())

	srv.Fail(apitest.RouteLeaderboard, http.StatusUnauthorized, "Not authorized, token failed")
	second, out := newTestAppWith(t, testConfig(srv, dbPath))
	require.False(t, second.resume(context.Background()))
	assert.Contains(t, out.String(), "Session expired")
	assert.False(t, second.isLoggedIn())
}
