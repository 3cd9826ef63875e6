package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/toilettracker/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/toilettracker/internal/common"
	"github.com/dmitrijs2005/toilettracker/internal/dbx"
	"github.com/dmitrijs2005/toilettracker/internal/logging"
)

// Session ties the token to the transport, the local store and the view
// state. Writes to the local store are serialized with session changes so
// a snapshot of an ended session is never persisted.
type Session struct {
	client client.Client
	db     *sql.DB
	state  *ViewState
	log    logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	token string
}

func NewSession(c client.Client, db *sql.DB, state *ViewState, log logging.Logger) *Session {
	return &Session{client: c, db: db, state: state, log: log, now: time.Now}
}

func (s *Session) State() *ViewState {
	return s.state
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Start persists token, attaches it to the transport and activates a new
// state generation.
func (s *Session) Start(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, common.TokenMetadataKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	s.activateLocked(token)
	return nil
}

func (s *Session) activateLocked(token string) {
	s.token = token
	s.client.SetToken(token)
	s.state.Activate()
}

// End clears the state, the token and every locally stored trace of the
// session. The in-memory part always succeeds; store errors are returned.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reset()
	return s.clearLocked(ctx)
}

// EndIf ends the session only when gen is still the active generation. It
// reports whether the session was ended.
func (s *Session) EndIf(ctx context.Context, gen uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.ResetIf(gen) {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Session) clearLocked(ctx context.Context) error {
	s.token = ""
	s.client.SetToken("")

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return errors.Join(
			metadata.NewSQLiteRepository(tx).Delete(ctx, common.TokenMetadataKey),
			snapshot.NewSQLiteRepository(tx).Clear(ctx),
		)
	})
}

// Restore reuses a token saved by an earlier run. A JWT that has already
// expired is dropped. It reports whether a session was restored.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.TokenMetadataKey)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return false, nil
	}

	if info, err := ParseToken(token); err == nil && info.Expired(s.now()) {
		s.log.Info(ctx, "stored token expired", "expired_at", info.ExpiresAt)
		s.state.Reset()
		return false, s.clearLocked(ctx)
	}

	s.activateLocked(token)
	return true, nil
}

// Info decodes the current token.
func (s *Session) Info() (TokenInfo, error) {
	token := s.Token()
	if token == "" {
		return TokenInfo{}, client.ErrNotLoggedIn
	}
	return ParseToken(token)
}

// Commit applies snap for generation gen and stores it as the offline copy.
// It reports false when the generation is no longer current; nothing is
// applied or stored then.
func (s *Session) Commit(ctx context.Context, gen uint64, snap models.Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Apply(gen, snap, false) {
		return false, nil
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return snapshot.NewSQLiteRepository(tx).Save(ctx, snap)
	})
	if err != nil {
		return true, fmt.Errorf("save snapshot: %w", err)
	}
	return true, nil
}

// LoadCached shows the stored snapshot, marked offline, for generation gen.
// It reports whether a snapshot was applied.
func (s *Session) LoadCached(ctx context.Context, gen uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := snapshot.NewSQLiteRepository(s.db).Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return false, nil
	}
	return s.state.Apply(gen, *snap, true), nil
}
