package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyhall-platform/studyhall/internal/catalog"
	"github.com/studyhall-platform/studyhall/internal/principal"
)

func testGuard() RouteGuard {
	return RouteGuard{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		SignInPath: "/auth/login",
	}
}

func serveRoute(t *testing.T, g RouteGuard, p *principal.Principal, roles ...string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	rendered := false
	handler := g.RequireRoles(roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rendered = true
		_, _ = w.Write([]byte("protected page body"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/audit", nil)
	if p != nil {
		req = req.WithContext(principal.ContextWithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, rendered
}

func TestRouteGuardRedirectsAnonymousToSignIn(t *testing.T) {
	rec, rendered := serveRoute(t, testGuard(), nil, catalog.RoleAdmin)
	assert.False(t, rendered, "protected body must never render on deny")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "protected page body")
}

func TestRouteGuardRedirectsInsufficientRoleHome(t *testing.T) {
	p := &principal.Principal{ID: 1, Roles: []string{catalog.RoleUser}}
	rec, rendered := serveRoute(t, testGuard(), p, catalog.RoleAdmin, catalog.RoleSuperAdmin)
	assert.False(t, rendered)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRouteGuardPassesMatchingRole(t *testing.T) {
	p := &principal.Principal{ID: 1, Roles: []string{catalog.RoleAdmin}}
	rec, rendered := serveRoute(t, testGuard(), p, catalog.RoleAdmin, catalog.RoleSuperAdmin)
	assert.True(t, rendered)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteGuardNoRolesMeansAnyAuthenticated(t *testing.T) {
	p := &principal.Principal{ID: 1, Roles: []string{catalog.RoleUser}}
	_, rendered := serveRoute(t, testGuard(), p)
	assert.True(t, rendered)

	rec, rendered := serveRoute(t, testGuard(), nil)
	assert.False(t, rendered)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRouteGuardDefaultPaths(t *testing.T) {
	g := RouteGuard{}
	rec, _ := serveRoute(t, g, nil, catalog.RoleAdmin)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}
