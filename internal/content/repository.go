package content

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhall-platform/studyhall/internal/catalog"
)

// Repository provides PostgreSQL backed content lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindDescriptor loads one item by kind and ID. Malformed rows surface as
// ErrMalformed so callers never gate on garbage.
func (r *Repository) FindDescriptor(ctx context.Context, kind Kind, id int64) (Descriptor, error) {
	var (
		d    Descriptor
		cap  *int
		tier *string
		lvl  *string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, title, access_level, required_tier, preview_cap_seconds,
		        body, COALESCE(preview_body, '')
		   FROM content_items
		  WHERE kind = $1 AND id = $2`,
		string(kind), id,
	).Scan(&d.ID, &d.Kind, &d.Title, &lvl, &tier, &cap, &d.Body, &d.PreviewBody)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Descriptor{}, ErrNotFound
		}
		return Descriptor{}, err
	}
	if lvl != nil {
		d.AccessLevel = catalog.AccessLevel(*lvl)
	}
	if tier != nil {
		d.RequiredTier = catalog.Tier(*tier)
	}
	d.PreviewCapSeconds = cap
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}
