package access

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/studyhall-platform/studyhall/internal/consumption"
	"github.com/studyhall-platform/studyhall/internal/content"
	"github.com/studyhall-platform/studyhall/internal/platform/httpx"
	"github.com/studyhall-platform/studyhall/internal/principal"
)

// Actions understood by the guard.
const (
	ActionRead = "read"
	ActionPost = "post"
)

// DescriptorLoader fetches the descriptor the guarded handler is about to
// serve. Returning content.ErrNotFound produces a 404 distinct from any
// gating denial.
type DescriptorLoader func(r *http.Request) (content.Descriptor, error)

// StateLoader fetches the consumption state for the requester, nil when the
// pair has none yet.
type StateLoader func(r *http.Request, p *principal.Principal) (*consumption.State, error)

// Observer receives one callback per decision, for metrics.
type Observer interface {
	ObserveDecision(kind string, allowed bool, reason string)
}

// DenyBody is the JSON error envelope the guard returns on denial.
type DenyBody struct {
	Error          string `json:"error"`
	Reason         Reason `json:"reason"`
	RequiredAction Action `json:"requiredAction,omitempty"`
}

// Guard wraps API handlers with a (resource, action) authorization check.
// The route middleware must have resolved the principal into the request
// context already; the guard itself performs no identity I/O.
type Guard struct {
	Logger   *slog.Logger
	Observer Observer
}

// Authorize returns middleware enforcing the decision engine for one
// resource and action. loadState may be nil for content without a
// consumption meter.
func (g Guard) Authorize(resource, action string, load DescriptorLoader, loadState StateLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principal.FromContext(r.Context())

			d, err := load(r)
			if err != nil {
				if errors.Is(err, content.ErrNotFound) {
					httpx.Problem(w, http.StatusNotFound, "Not Found", string(ReasonContentNotFound))
					return
				}
				g.logError("load descriptor", resource, err)
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}

			// Reading a forum thread is never gated.
			if d.Kind == content.KindForumThread && action != ActionPost {
				next.ServeHTTP(w, r)
				return
			}

			var state *consumption.State
			if loadState != nil && p != nil {
				state, err = loadState(r, p)
				if err != nil {
					g.logError("load consumption", resource, err)
					httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
					return
				}
			}

			decision, err := Decide(p, d, state)
			if err != nil {
				g.logError("decide", resource, err)
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			g.observe(d.Kind, decision)

			// Read surfaces that can degrade to a preview pass the decision
			// through; the content service downgrades the body.
			if decision.Allowed || (action == ActionRead && decision.PreviewAllowed) {
				next.ServeHTTP(w, r)
				return
			}

			g.Deny(w, decision)
		})
	}
}

// Deny writes the structured denial response for a decision.
func (g Guard) Deny(w http.ResponseWriter, decision Decision) {
	status := http.StatusForbidden
	if decision.Reason == ReasonNotAuthenticated {
		status = http.StatusUnauthorized
	}
	httpx.JSON(w, status, DenyBody{
		Error:          http.StatusText(status),
		Reason:         decision.Reason,
		RequiredAction: decision.RequiredAction,
	})
}

func (g Guard) observe(kind content.Kind, decision Decision) {
	if g.Observer == nil {
		return
	}
	g.Observer.ObserveDecision(string(kind), decision.Allowed, string(decision.Reason))
}

func (g Guard) logError(op, resource string, err error) {
	if g.Logger != nil {
		g.Logger.Error("guard "+op, slog.String("resource", resource), slog.Any("error", err))
	}
}
