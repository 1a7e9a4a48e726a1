package forum

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhall-platform/studyhall/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for forum writes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateThread inserts a thread and mirrors it into content_items so the
// gating surfaces can look it up like any other content. Both rows commit
// together or not at all.
func (r *Repository) CreateThread(ctx context.Context, authorID int64, title, body string) (Thread, error) {
	var t Thread
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var itemID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO content_items (kind, title, body) VALUES ('forum_thread', $1, $2) RETURNING id`,
			title, body,
		).Scan(&itemID); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO forum_threads (id, author_id, title, body)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, author_id, title, body, created_at`,
			itemID, authorID, title, body,
		).Scan(&t.ID, &t.AuthorID, &t.Title, &t.Body, &t.CreatedAt)
	})
	return t, err
}

// CreateReply inserts a reply into an existing thread.
func (r *Repository) CreateReply(ctx context.Context, threadID, authorID int64, body string) (Reply, error) {
	var rep Reply
	err := r.pool.QueryRow(ctx,
		`INSERT INTO forum_replies (thread_id, author_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, thread_id, author_id, body, created_at`,
		threadID, authorID, body,
	).Scan(&rep.ID, &rep.ThreadID, &rep.AuthorID, &rep.Body, &rep.CreatedAt)
	return rep, err
}
