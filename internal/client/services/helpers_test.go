package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/toilettracker/internal/client/apitest"
	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/logging"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv     *apitest.Server
	client  *client.HTTPClient
	db      *sql.DB
	state   *ViewState
	session *Session
	data    DataService
	refresh *countingObserver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	c, err := client.NewHTTPClient(srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.NewNop()
	state := NewViewState()
	session := NewSession(c, db, state, log)
	obs := &countingObserver{}

	return &testEnv{
		srv:     srv,
		client:  c,
		db:      db,
		state:   state,
		session: session,
		data:    NewDataService(c, session, obs, log),
		refresh: obs,
	}
}

// login registers email on the fake server and starts a session for it.
func (e *testEnv) login(t *testing.T, email string) {
	t.Helper()
	e.srv.AddUser(email, "pw")
	token, err := e.client.Login(context.Background(), models.Credentials{Email: email, Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, e.session.Start(context.Background(), token))
}

func (e *testEnv) storedToken(t *testing.T) string {
	t.Helper()
	var v string
	err := e.db.QueryRow(`SELECT value FROM metadata WHERE key = 'token'`).Scan(&v)
	if err == sql.ErrNoRows {
		return ""
	}
	require.NoError(t, err)
	return v
}

func (e *testEnv) snapshotRows(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT count(*) FROM snapshot`).Scan(&n))
	return n
}

type countingObserver struct {
	mu      sync.Mutex
	results []string
}

func (c *countingObserver) ObserveRefresh(result string) {
	c.mu.Lock()
	c.results = append(c.results, result)
	c.mu.Unlock()
}

func (c *countingObserver) Results() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.results...)
}

// countingRefresher records Refresh calls and delegates to next when set.
type countingRefresher struct {
	mu    sync.Mutex
	calls int
	next  Refresher
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.next != nil {
		return r.next.Refresh(ctx)
	}
	return r.err
}

func (r *countingRefresher) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeLocator struct {
	pos   models.Coordinates
	err   error
	block bool
	calls int
}

func (f *fakeLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return models.Coordinates{}, ctx.Err()
	}
	return f.pos, f.err
}
