package principal

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"github.com/studyhall-platform/studyhall/internal/catalog"
	"github.com/studyhall-platform/studyhall/internal/shared"
)

// IdentityStore loads raw identities. The postgres implementation lives in
// repo.sql.go; tests inject stubs.
type IdentityStore interface {
	FindIdentity(ctx context.Context, id int64) (*RawIdentity, error)
}

// AuditRecorder receives override-use events. *shared.AuditLogger satisfies it.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Resolver turns an opaque identity ID into a normalized Principal.
type Resolver struct {
	store         IdentityStore
	audit         AuditRecorder
	logger        *slog.Logger
	overrideEmail string
	group         singleflight.Group
}

// NewResolver constructs a Resolver. overrideEmail may be empty to disable
// the operator escape hatch.
func NewResolver(store IdentityStore, audit AuditRecorder, logger *slog.Logger, overrideEmail string) *Resolver {
	return &Resolver{
		store:         store,
		audit:         audit,
		logger:        logger,
		overrideEmail: foldEmail(overrideEmail),
	}
}

// Legacy single-role values reconciled into the structured role vocabulary.
// "vip" predates the membership rework and granted the same access as paid.
var legacyRoles = map[string]string{
	"paid":  catalog.RolePremiumUser,
	"vip":   catalog.RolePremiumUser,
	"admin": catalog.RoleAdmin,
	"user":  catalog.RoleUser,
}

// Resolve loads and normalizes the identity. Concurrent resolutions of the
// same ID are collapsed; results are never cached across requests, so a role
// change takes effect on the very next request.
func (r *Resolver) Resolve(ctx context.Context, identityID int64) (*Principal, error) {
	v, err, _ := r.group.Do(strconv.FormatInt(identityID, 10), func() (any, error) {
		// The shared call serves collapsed callers too, so it must not die
		// with whichever request happened to start it.
		return r.resolve(context.WithoutCancel(ctx), identityID)
	})
	if err != nil {
		return nil, err
	}
	p := v.(Principal)
	return &p, nil
}

func (r *Resolver) resolve(ctx context.Context, identityID int64) (Principal, error) {
	raw, err := r.store.FindIdentity(ctx, identityID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}

	roles := normalizeRoles(raw.Roles)
	if len(roles) == 0 {
		// Historical schema kept a single role column; reconcile it into the
		// same shape. The structured role table wins when both exist.
		if legacy := strings.TrimSpace(strings.ToLower(raw.LegacyRole)); legacy != "" {
			mapped, ok := legacyRoles[legacy]
			if !ok {
				mapped = legacy
			}
			roles = []string{mapped}
		}
	}
	if len(roles) == 0 {
		roles = []string{catalog.RoleUser}
	}

	p := Principal{
		ID:             raw.ID,
		Email:          raw.Email,
		Roles:          roles,
		MembershipTier: catalog.TierForRoles(roles),
	}

	if r.overrideEmail != "" && foldEmail(raw.Email) == r.overrideEmail {
		p.Override = true
		if !p.HasRole(catalog.RoleAdmin) {
			p.Roles = append(p.Roles, catalog.RoleAdmin)
		}
		p.MembershipTier = catalog.TierForRoles(p.Roles)
		r.recordOverride(ctx, &p)
	}

	return p, nil
}

// recordOverride makes every use of the operator escape hatch visible: one
// structured log line plus an audit row.
func (r *Resolver) recordOverride(ctx context.Context, p *Principal) {
	if r.logger != nil {
		r.logger.Warn("override identity resolved to admin",
			slog.Int64("identity_id", p.ID),
			slog.String("email", p.Email))
	}
	if r.audit == nil {
		return
	}
	err := r.audit.Record(ctx, shared.AuditLog{
		ActorID:  p.ID,
		Action:   shared.AuditActionOverride,
		Entity:   "identity",
		EntityID: strconv.FormatInt(p.ID, 10),
		Meta:     map[string]any{"email": p.Email},
	})
	if err != nil && r.logger != nil {
		r.logger.Warn("record override audit", slog.Any("error", err))
	}
}

func normalizeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(strings.ToLower(role))
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}

func foldEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
