package principal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed identity lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindIdentity loads an identity row together with its structured role
// assignments. The legacy_role column rides along for reconciliation.
func (r *Repository) FindIdentity(ctx context.Context, id int64) (*RawIdentity, error) {
	var raw RawIdentity
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, COALESCE(legacy_role, '') FROM identities WHERE id = $1`,
		id,
	).Scan(&raw.ID, &raw.Email, &raw.LegacyRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("identity %d not found", id)
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.name
		   FROM identity_roles ir
		   JOIN roles r ON r.id = ir.role_id
		  WHERE ir.identity_id = $1
		  ORDER BY r.name`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		raw.Roles = append(raw.Roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &raw, nil
}
