package principal

import (
	"errors"

	"github.com/studyhall-platform/studyhall/internal/catalog"
)

// ErrUnresolved indicates the identity store could not produce an identity.
// It is an infrastructure failure, never a gating decision: callers must
// surface it as a 5xx, not treat the requester as anonymous.
var ErrUnresolved = errors.New("principal: identity unresolved")

// RawIdentity is the identity-store row before reconciliation.
type RawIdentity struct {
	ID         int64
	Email      string
	Roles      []string
	LegacyRole string
}

// Principal is the normalized requester for one access decision. Roles and
// tier are resolved once per request and do not change mid-decision.
type Principal struct {
	ID             int64
	Email          string
	Roles          []string
	MembershipTier catalog.Tier
	// Override marks the configured operator identity that always resolves
	// to admin regardless of role-table state.
	Override bool
}

// HasRole reports whether the principal holds the named role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of the roles.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// Permissions returns the permission set granted by the principal's roles.
func (p *Principal) Permissions() []string {
	if p == nil {
		return nil
	}
	return catalog.PermissionsForRoles(p.Roles)
}
