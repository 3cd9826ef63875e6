// Package snapshot persists the last successful refresh (progress, entry
// list, leaderboard and map center) so the client can show it while the API
// is unreachable.
//
// The store holds at most one snapshot. Save replaces it completely and is
// expected to run inside a transaction (see dbx.WithTx) so a reader never
// observes a half-written snapshot:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return snapshot.NewSQLiteRepository(tx).Save(ctx, snap)
//	})
package snapshot
