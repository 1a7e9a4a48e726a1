package access

import "github.com/studyhall-platform/studyhall/internal/content"

// Reason is a machine-readable code explaining a denial. The set is closed;
// surfaces switch on these values and must not invent new ones.
type Reason string

// Denial reasons.
const (
	ReasonNotAuthenticated Reason = "not_authenticated"
	ReasonInsufficientTier Reason = "insufficient_tier"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonPreviewExhausted Reason = "preview_exhausted"
	ReasonContentNotFound  Reason = "content_not_found"
)

// Action tells the client what would change the decision. Empty means
// nothing the requester can do (or nothing is needed).
type Action string

// Required actions.
const (
	ActionSignIn  Action = "sign_in"
	ActionUpgrade Action = "upgrade"
	ActionWait    Action = "wait"
)

// RequiredAction maps a reason to its fixed action for the given content
// kind. Article previews do not expire by time, so an exhausted preview only
// carries an action for videos.
func (r Reason) RequiredAction(kind content.Kind) Action {
	switch r {
	case ReasonNotAuthenticated:
		return ActionSignIn
	case ReasonInsufficientTier, ReasonInsufficientRole:
		return ActionUpgrade
	case ReasonPreviewExhausted:
		if kind == content.KindVideo {
			return ActionUpgrade
		}
		return ""
	default:
		return ""
	}
}
