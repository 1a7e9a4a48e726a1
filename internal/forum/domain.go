package forum

import "time"

// Thread is a forum discussion root. The gating engine only decides who may
// post; the rest of the forum lives with its own CRUD surface.
type Thread struct {
	ID        int64
	AuthorID  int64
	Title     string
	Body      string
	CreatedAt time.Time
}

// Reply is a message inside a thread.
type Reply struct {
	ID        int64
	ThreadID  int64
	AuthorID  int64
	Body      string
	CreatedAt time.Time
}
