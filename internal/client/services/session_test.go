package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StartPersistsAndActivates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, e.session.Start(ctx, "tok"))

	require.True(t, e.session.LoggedIn())
	require.Equal(t, "tok", e.storedToken(t))
	_, active := e.state.Generation()
	require.True(t, active)
}

func TestSession_EndClearsEverything(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.login(t, "a@example.com")
	require.NoError(t, e.data.Refresh(ctx))
	require.Equal(t, 1, e.snapshotRows(t))

	require.NoError(t, e.session.End(ctx))

	require.False(t, e.session.LoggedIn())
	require.Empty(t, e.storedToken(t))
	require.Zero(t, e.snapshotRows(t))
	_, ok := e.state.Snapshot()
	require.False(t, ok)

	_, err := e.client.Progress(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized, "bearer header removed")
}

func TestSession_EndIfIgnoresOtherGeneration(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.session.Start(ctx, "old"))
	gen, _ := e.state.Generation()
	require.NoError(t, e.session.Start(ctx, "new"))

	ended, err := e.session.EndIf(ctx, gen)
	require.NoError(t, err)
	require.False(t, ended)
	require.Equal(t, "new", e.session.Token())
}

func TestSession_Restore(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	ok, err := e.session.Restore(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	token, err := e.srv.Token("a@example.com", time.Hour)
	require.NoError(t, err)
	_, err = e.db.Exec(`INSERT INTO metadata(key, value) VALUES ('token', ?)`, token)
	require.NoError(t, err)

	ok, err = e.session.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, token, e.session.Token())

	info, err := e.session.Info()
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", info.Email)
}

func TestSession_RestoreDropsExpiredToken(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	token, err := e.srv.Token("a@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = e.db.Exec(`INSERT INTO metadata(key, value) VALUES ('token', ?)`, token)
	require.NoError(t, err)

	ok, err := e.session.Restore(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, e.session.LoggedIn())
	require.Empty(t, e.storedToken(t))
}

func TestSession_RestoreKeepsOpaqueToken(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.db.Exec(`INSERT INTO metadata(key, value) VALUES ('token', 'opaque')`)
	require.NoError(t, err)

	ok, err := e.session.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.session.Info()
	require.ErrorIs(t, err, ErrNotJWT)
}

func TestSession_InfoWithoutToken(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.session.Info()
	require.ErrorIs(t, err, client.ErrNotLoggedIn)
}

func TestSession_CommitStaleGenerationNotStored(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.session.Start(ctx, "tok"))
	gen, _ := e.state.Generation()
	require.NoError(t, e.session.End(ctx))

	applied, err := e.session.Commit(ctx, gen, models.Snapshot{FetchedAt: time.Now()})
	require.NoError(t, err)
	require.False(t, applied)
	require.Zero(t, e.snapshotRows(t))
}
