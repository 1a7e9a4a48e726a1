package consumption

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for watch progress.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Find loads the durable state for a pair, nil when absent.
func (r *Repository) Find(ctx context.Context, principalID, contentID int64) (*State, error) {
	var state State
	err := r.pool.QueryRow(ctx,
		`SELECT principal_id, content_id, watched_seconds, updated_at
		   FROM watch_progress
		  WHERE principal_id = $1 AND content_id = $2`,
		principalID, contentID,
	).Scan(&state.PrincipalID, &state.ContentID, &state.WatchedSeconds, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// UpsertMax writes the counter, keeping the larger of the stored and the
// reported value. The monotonic guarantee holds on both sides of the cache.
func (r *Repository) UpsertMax(ctx context.Context, principalID, contentID int64, watchedSeconds int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO watch_progress (principal_id, content_id, watched_seconds, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (principal_id, content_id)
		 DO UPDATE SET watched_seconds = GREATEST(watch_progress.watched_seconds, EXCLUDED.watched_seconds),
		               updated_at = NOW()`,
		principalID, contentID, watchedSeconds,
	)
	return err
}
