package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/studyhall-platform/studyhall/internal/audit/http"
	"github.com/studyhall-platform/studyhall/internal/catalog"
	contenthttp "github.com/studyhall-platform/studyhall/internal/content/http"
	"github.com/studyhall-platform/studyhall/internal/observability"
	"github.com/studyhall-platform/studyhall/internal/platform/httpx"
	"github.com/studyhall-platform/studyhall/internal/principal"
	"github.com/studyhall-platform/studyhall/internal/shared"
	"github.com/studyhall-platform/studyhall/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Resolver       *principal.Resolver
	ContentHandler *contenthttp.Handler
	AuditHandler   *audithttp.Handler
	JobHandler     *jobs.Handler
	RouteGuard     RouteGuard
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Studyhall defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Resolver:       params.Resolver,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.ContentHandler != nil {
		r.Route("/api", params.ContentHandler.MountRoutes)
	}

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(params.RouteGuard.RequireRoles())
		r.Get("/", dashboardSummary)
		r.Get("/*", dashboardSummary)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(params.RouteGuard.RequireRoles(catalog.RoleAdmin, catalog.RoleSuperAdmin))
		if params.AuditHandler != nil {
			r.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// dashboardSummary is the default authenticated landing payload: the
// requester's resolved roles, tier, and permission set. The route guard has
// already ensured a principal exists.
func dashboardSummary(w http.ResponseWriter, r *http.Request) {
	p := principal.FromContext(r.Context())
	if p == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":          p.ID,
		"roles":       p.Roles,
		"tier":        p.MembershipTier,
		"permissions": p.Permissions(),
	})
}
