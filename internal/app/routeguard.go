package app

import (
	"log/slog"
	"net/http"

	"github.com/studyhall-platform/studyhall/internal/access"
	"github.com/studyhall-platform/studyhall/internal/principal"
)

// RouteGuard is the coarse enforcement surface: it runs before a protected
// page loads and acts on role membership alone, since the route itself is
// the content. Deny never renders the protected body; anonymous requesters
// go to sign-in, signed-in requesters without the role go back to the
// landing page.
type RouteGuard struct {
	Logger     *slog.Logger
	SignInPath string
	HomePath   string
	Observer   access.Observer
}

// RequireRoles guards a route subtree. With no roles listed, any
// authenticated principal passes.
func (g RouteGuard) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principal.FromContext(r.Context())
			decision := access.DecideRoute(p, roles...)
			if g.Observer != nil {
				g.Observer.ObserveDecision("route", decision.Allowed, string(decision.Reason))
			}
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			if g.Logger != nil {
				g.Logger.Info("route guard deny",
					slog.String("path", r.URL.Path),
					slog.String("reason", string(decision.Reason)))
			}
			if decision.Reason == access.ReasonNotAuthenticated {
				http.Redirect(w, r, g.signInPath(), http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, g.homePath(), http.StatusSeeOther)
		})
	}
}

func (g RouteGuard) signInPath() string {
	if g.SignInPath != "" {
		return g.SignInPath
	}
	return "/auth/login"
}

func (g RouteGuard) homePath() string {
	if g.HomePath != "" {
		return g.HomePath
	}
	return "/"
}
