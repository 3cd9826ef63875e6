package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/apitest"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	endpoint string
	method   string
	status   int
}

type fakeObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeObserver) ObserveRequest(endpoint, method string, status int, _ time.Duration) {
	f.mu.Lock()
	f.obs = append(f.obs, observation{endpoint, method, status})
	f.mu.Unlock()
}

func newTestClient(t *testing.T, srv *apitest.Server, opts ...Option) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(srv.URL, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewHTTPClient_ValidatesURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.com")
	require.Error(t, err)

	_, err = NewHTTPClient("://bad")
	require.Error(t, err)

	c, err := NewHTTPClient("https://example.com/")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", c.baseURL)
}

func TestLoginSignup(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	c := newTestClient(t, srv)
	ctx := context.Background()
	creds := models.Credentials{Email: "alice@example.com", Password: "pw"}

	_, err := c.Login(ctx, creds)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Equal(t, "Invalid credentials", MessageOf(err, "Error"))

	token, err := c.Signup(ctx, creds)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = c.Signup(ctx, creds)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
	require.Equal(t, "User already exists", MessageOf(err, "Error"))

	token, err = c.Login(ctx, creds)
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestAuthorizedReads(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("bob@example.com", "pw")
	srv.SeedEntry("bob@example.com", models.Entry{
		Name:      "Station",
		Location:  models.NewPoint(models.Coordinates{Latitude: 51.5, Longitude: -0.1}),
		VisitedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})

	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Progress(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	token, err := c.Login(ctx, models.Credentials{Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	c.SetToken(token)

	p, err := c.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, models.Goal-1, p.Remaining)

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Station", entries[0].Name)
	coords, ok := entries[0].Coordinates()
	require.True(t, ok)
	assert.Equal(t, 51.5, coords.Latitude)
	assert.Equal(t, -0.1, coords.Longitude)

	board, err := c.Leaderboard(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.LeaderboardEntry{{Email: "bob@example.com", Total: 1}}, board)

	h := srv.LastHeaders(apitest.RouteProgress)
	assert.Equal(t, "Bearer "+token, h.Get("Authorization"))
	_, err = uuid.Parse(h.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestCreateEntryAndToggle(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("c@example.com", "pw")
	c := newTestClient(t, srv)
	ctx := context.Background()

	token, err := c.Login(ctx, models.Credentials{Email: "c@example.com", Password: "pw"})
	require.NoError(t, err)
	c.SetToken(token)

	in := models.NewEntry{Name: "Cafe", Latitude: 48.85, Longitude: 2.35, Address: "Paris"}
	created, err := c.CreateEntry(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Cafe", created.Name)

	_, err = c.CreateEntry(ctx, in)
	require.Error(t, err)
	require.Equal(t, "You already logged this toilet!", MessageOf(err, "Already logged here?"))

	msg, err := c.ToggleGolden(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marked as Golden Bowl!", msg)
	require.True(t, srv.UserEntries("c@example.com")[0].IsGoldenBowl)

	_, err = c.ToggleGolden(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestServerErrorsClassified(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	c := newTestClient(t, srv)
	ctx := context.Background()

	srv.Fail(apitest.RouteEntries, http.StatusInternalServerError, "boom")
	_, err := c.Entries(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrUnauthorized)

	srv.Fail(apitest.RouteEntries, http.StatusForbidden, "nope")
	_, err = c.Entries(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPlainTextErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Progress(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.Message, maxErrorText)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewHTTPClient(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.Leaderboard(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestCanceledContextNotUnavailable(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	release := srv.Hold(apitest.RouteProgress)
	defer release()

	c := newTestClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Progress(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, errors.Is(err, ErrUnavailable))
}

func TestPing(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	c := newTestClient(t, srv)

	require.NoError(t, c.Ping(context.Background()))

	srv.Fail(apitest.RoutePing, http.StatusNotFound, "not here")
	require.NoError(t, c.Ping(context.Background()))

	srv.Fail(apitest.RoutePing, http.StatusServiceUnavailable, "sleeping")
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestObserverReceivesRequests(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	obs := &fakeObserver{}
	c := newTestClient(t, srv, WithObserver(obs))
	ctx := context.Background()

	_, _ = c.Login(ctx, models.Credentials{Email: "x@example.com", Password: "pw"})
	_ = c.Ping(ctx)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Equal(t, []observation{
		{"login", http.MethodPost, http.StatusBadRequest},
		{"ping", http.MethodGet, http.StatusOK},
	}, obs.obs)
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		target error
		want   bool
	}{
		{"401 unauthorized", &APIError{StatusCode: 401}, ErrUnauthorized, true},
		{"403 unauthorized", &APIError{StatusCode: 403}, ErrUnauthorized, true},
		{"400 not unauthorized", &APIError{StatusCode: 400}, ErrUnauthorized, false},
		{"503 unavailable", &APIError{StatusCode: 503}, ErrUnavailable, true},
		{"404 available", &APIError{StatusCode: 404}, ErrUnavailable, false},
		{"invalid creds", &APIError{StatusCode: 400, Message: "Invalid credentials"}, ErrInvalidCredentials, true},
		{"other 400", &APIError{StatusCode: 400, Message: "User already exists"}, ErrInvalidCredentials, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	require.Equal(t, "api error 500: Internal Server Error", (&APIError{StatusCode: 500}).Error())
	require.Equal(t, "api error 400: dup", (&APIError{StatusCode: 400, Message: "dup"}).Error())
}

func TestMessageOf(t *testing.T) {
	require.Equal(t, "fallback", MessageOf(errors.New("x"), "fallback"))
	require.Equal(t, "fallback", MessageOf(&APIError{StatusCode: 500}, "fallback"))
	require.Equal(t, "dup", MessageOf(&APIError{StatusCode: 400, Message: "dup"}, "fallback"))
}
