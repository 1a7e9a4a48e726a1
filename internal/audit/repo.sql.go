package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository provides PostgreSQL backed access to audit_logs.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListEvents returns events newest first, optionally filtered by action.
func (r *PGRepository) ListEvents(ctx context.Context, action string, limit, offset int) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, action, entity, entity_id, meta, occurred_at
		   FROM audit_logs
		  WHERE ($1 = '' OR action = $1)
		  ORDER BY occurred_at DESC, id DESC
		  LIMIT $2 OFFSET $3`,
		action, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var (
			e        Event
			metaJSON []byte
			at       time.Time
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &metaJSON, &at); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &e.Meta)
		}
		e.OccurredAt = at.UTC().Format(time.RFC3339)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// CountEvents counts events matching the filter.
func (r *PGRepository) CountEvents(ctx context.Context, action string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_logs WHERE ($1 = '' OR action = $1)`,
		action,
	).Scan(&total)
	return total, err
}
