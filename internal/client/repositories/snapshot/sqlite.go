package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, snap models.Snapshot) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}

	var progress sql.NullString
	if snap.Progress != nil {
		b, err := json.Marshal(snap.Progress)
		if err != nil {
			return fmt.Errorf("failed to encode progress: %w", err)
		}
		progress = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshot (id, progress, center_lat, center_lon, fetched_at) VALUES (1, ?, ?, ?, ?)`,
		progress, snap.Center.Latitude, snap.Center.Longitude, snap.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for i, e := range snap.Entries {
		location, err := json.Marshal(e.Location)
		if err != nil {
			return fmt.Errorf("failed to encode location of %s: %w", e.ID, err)
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO snapshot_entries (position, id, name, address, location, visited_at, golden)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, e.ID, e.Name, e.Address, string(location), e.VisitedAt.UTC().Format(time.RFC3339Nano), e.IsGoldenBowl)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot entry: %w", err)
		}
	}

	for i, row := range snap.Leaderboard {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO snapshot_leaderboard (rank, email, total) VALUES (?, ?, ?)`,
			i, row.Email, row.Total)
		if err != nil {
			return fmt.Errorf("failed to insert leaderboard row: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	var (
		snap      models.Snapshot
		progress  sql.NullString
		fetchedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT progress, center_lat, center_lon, fetched_at FROM snapshot WHERE id = 1`).
		Scan(&progress, &snap.Center.Latitude, &snap.Center.Longitude, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot: %w", err)
	}

	if progress.Valid {
		snap.Progress = &models.Progress{}
		if err := json.Unmarshal([]byte(progress.String), snap.Progress); err != nil {
			return nil, fmt.Errorf("failed to decode progress: %w", err)
		}
	}
	if snap.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
	}

	if snap.Entries, err = r.loadEntries(ctx); err != nil {
		return nil, err
	}
	if snap.Leaderboard, err = r.loadLeaderboard(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *SQLiteRepository) loadEntries(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, location, visited_at, golden
		FROM snapshot_entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot entries: %w", err)
	}
	defer rows.Close()

	result := []models.Entry{}
	for rows.Next() {
		var (
			e         models.Entry
			location  string
			visitedAt string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Address, &location, &visitedAt, &e.IsGoldenBowl); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot entry: %w", err)
		}
		if err := json.Unmarshal([]byte(location), &e.Location); err != nil {
			return nil, fmt.Errorf("failed to decode location of %s: %w", e.ID, err)
		}
		if e.VisitedAt, err = time.Parse(time.RFC3339Nano, visitedAt); err != nil {
			return nil, fmt.Errorf("failed to parse visited_at of %s: %w", e.ID, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot entries: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) loadLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT email, total FROM snapshot_leaderboard ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("failed to select leaderboard: %w", err)
	}
	defer rows.Close()

	result := []models.LeaderboardEntry{}
	for rows.Next() {
		var row models.LeaderboardEntry
		if err := rows.Scan(&row.Email, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	for _, table := range []string{"snapshot_entries", "snapshot_leaderboard", "snapshot"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
