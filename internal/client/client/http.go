package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/common"
	"github.com/google/uuid"
)

const (
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
	// maxErrorText bounds a plain-text error body kept as the message.
	maxErrorText = 200
)

// Observer receives one call per finished request. status is 0 when no
// response was received.
type Observer interface {
	ObserveRequest(endpoint, method string, status int, elapsed time.Duration)
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *HTTPClient) {
		c.observer = o
	}
}

// HTTPClient implements Client over the REST API.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	observer Observer

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", false, creds, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *HTTPClient) Signup(ctx context.Context, creds models.Credentials) (string, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/api/auth/signup", false, creds, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *HTTPClient) Progress(ctx context.Context) (*models.Progress, error) {
	var p models.Progress
	if err := c.do(ctx, "progress", http.MethodGet, "/api/toilets/my-progress", true, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Entries(ctx context.Context) ([]models.Entry, error) {
	entries := []models.Entry{}
	if err := c.do(ctx, "entries", http.MethodGet, "/api/toilets", true, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows := []models.LeaderboardEntry{}
	if err := c.do(ctx, "leaderboard", http.MethodGet, "/api/toilets/leaderboard", true, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, entry models.NewEntry) (*models.Entry, error) {
	var created models.Entry
	if err := c.do(ctx, "create_entry", http.MethodPost, "/api/toilets", true, entry, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) ToggleGolden(ctx context.Context, id string) (string, error) {
	var resp models.MessageResponse
	path := "/api/toilets/" + url.PathEscape(id) + "/toggle-golden"
	if err := c.do(ctx, "toggle_golden", http.MethodPatch, path, true, struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Ping reports whether the API host answers at all. Any response below 500
// counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("ping", http.MethodGet, 0, start)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	c.observe("ping", http.MethodGet, resp.StatusCode, start)

	if resp.StatusCode >= http.StatusInternalServerError {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if auth {
		if token := c.currentToken(); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, method, 0, start)
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, method, resp.StatusCode, start)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return apiErr
	}

	var msg models.MessageResponse
	if json.Unmarshal(b, &msg) == nil && msg.Message != "" {
		apiErr.Message = msg.Message
		return apiErr
	}
	if !json.Valid(b) {
		text := strings.TrimSpace(string(b))
		if len(text) > maxErrorText {
			text = text[:maxErrorText]
		}
		apiErr.Message = text
	}
	return apiErr
}

func (c *HTTPClient) observe(endpoint, method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, method, status, time.Since(start))
	}
}
