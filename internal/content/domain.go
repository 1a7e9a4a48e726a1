package content

import (
	"errors"
	"fmt"

	"github.com/studyhall-platform/studyhall/internal/catalog"
)

// ErrNotFound indicates that the requested content does not exist. It is a
// distinct signal from any gating denial and must never be conflated with
// one; both directions would leak whether the content exists.
var ErrNotFound = errors.New("content: not found")

// ErrMalformed indicates a descriptor that violates the one-gating-dimension
// invariant for its kind.
var ErrMalformed = errors.New("content: malformed descriptor")

// Kind discriminates the three content families, each with its own gating
// dimension: access level for articles, tier plus time cap for videos, roles
// only for forum posting.
type Kind string

// Content kinds.
const (
	KindArticle     Kind = "article"
	KindVideo       Kind = "video"
	KindForumThread Kind = "forum_thread"
)

// Descriptor carries the access requirements and bodies for one item.
type Descriptor struct {
	ID    int64
	Kind  Kind
	Title string

	// AccessLevel gates articles.
	AccessLevel catalog.AccessLevel
	// RequiredTier gates videos.
	RequiredTier catalog.Tier
	// PreviewCapSeconds bounds the time-boxed video preview; nil means the
	// preview is not time-limited.
	PreviewCapSeconds *int

	Body        string
	PreviewBody string
}

// Validate enforces the per-kind gating invariant. The decision engine calls
// it before deciding; repositories call it after scanning.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindArticle:
		if !catalog.ValidLevel(d.AccessLevel) {
			return fmt.Errorf("%w: article %d has access level %q", ErrMalformed, d.ID, d.AccessLevel)
		}
		if d.RequiredTier != "" || d.PreviewCapSeconds != nil {
			return fmt.Errorf("%w: article %d carries video gating fields", ErrMalformed, d.ID)
		}
	case KindVideo:
		if !catalog.ValidTier(d.RequiredTier) {
			return fmt.Errorf("%w: video %d requires tier %q", ErrMalformed, d.ID, d.RequiredTier)
		}
		if d.AccessLevel != "" {
			return fmt.Errorf("%w: video %d carries article gating fields", ErrMalformed, d.ID)
		}
		if d.PreviewCapSeconds != nil && *d.PreviewCapSeconds < 0 {
			return fmt.Errorf("%w: video %d has negative preview cap", ErrMalformed, d.ID)
		}
	case KindForumThread:
		if d.AccessLevel != "" || d.RequiredTier != "" || d.PreviewCapSeconds != nil {
			return fmt.Errorf("%w: forum thread %d carries gating fields", ErrMalformed, d.ID)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformed, d.Kind)
	}
	return nil
}
