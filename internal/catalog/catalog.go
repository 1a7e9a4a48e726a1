// Package catalog holds the static tier and role vocabulary used by every
// gating surface. Adding a tier or role is an edit here only; no other
// package hard-codes these names.
package catalog

// Tier is an ordered membership level gating video consumption.
type Tier string

// Membership tiers, lowest to highest.
const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// AccessLevel is an ordered gating value for written content. It is a
// separate axis from Tier: an enterprise video tier does not imply premium
// article access unless the role mapping says so.
type AccessLevel string

// Article access levels, lowest to highest.
const (
	LevelFree    AccessLevel = "free"
	LevelPartial AccessLevel = "partial"
	LevelPremium AccessLevel = "premium"
)

// Role names recognized by the platform.
const (
	RoleUser        = "user"
	RolePremiumUser = "premium_user"
	RoleAdmin       = "admin"
	RoleSuperAdmin  = "super_admin"
)

var tierRank = map[Tier]int{
	TierFree:       0,
	TierBasic:      1,
	TierPremium:    2,
	TierEnterprise: 3,
}

var levelRank = map[AccessLevel]int{
	LevelFree:    0,
	LevelPartial: 1,
	LevelPremium: 2,
}

// ValidTier reports whether t is a known membership tier.
func ValidTier(t Tier) bool {
	_, ok := tierRank[t]
	return ok
}

// ValidLevel reports whether l is a known article access level.
func ValidLevel(l AccessLevel) bool {
	_, ok := levelRank[l]
	return ok
}

// CompareTiers orders membership tiers like a standard comparator:
// negative when a < b, zero when equal, positive when a > b.
// Unknown tiers rank below free.
func CompareTiers(a, b Tier) int {
	return rankOf(tierRank, string(a)) - rankOf(tierRank, string(b))
}

// CompareLevels orders article access levels like a standard comparator.
// Unknown levels rank below free.
func CompareLevels(a, b AccessLevel) int {
	return rankOf(levelRank, string(a)) - rankOf(levelRank, string(b))
}

func rankOf[K ~string](ranks map[K]int, v string) int {
	if r, ok := ranks[K(v)]; ok {
		return r
	}
	return -1
}

// Permission names attached to roles.
const (
	PermContentView    = "content.view"
	PermContentPublish = "content.publish"
	PermForumPost      = "forum.post"
	PermForumModerate  = "forum.moderate"
	PermAuditView      = "audit.view"
	PermAdminPanel     = "admin.panel"
)

var rolePermissions = map[string][]string{
	RoleUser:        {PermContentView},
	RolePremiumUser: {PermContentView, PermForumPost},
	RoleAdmin:       {PermContentView, PermContentPublish, PermForumPost, PermForumModerate, PermAuditView, PermAdminPanel},
	RoleSuperAdmin:  {PermContentView, PermContentPublish, PermForumPost, PermForumModerate, PermAuditView, PermAdminPanel},
}

// PermissionsForRoles returns the deduplicated permission set granted by the
// given roles. Unknown roles grant nothing.
func PermissionsForRoles(roles []string) []string {
	seen := make(map[string]struct{})
	var perms []string
	for _, role := range roles {
		for _, p := range rolePermissions[role] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			perms = append(perms, p)
		}
	}
	return perms
}

var roleTier = map[string]Tier{
	RoleUser:        TierFree,
	RolePremiumUser: TierPremium,
	RoleAdmin:       TierEnterprise,
	RoleSuperAdmin:  TierEnterprise,
}

// TierForRoles projects a role set onto a membership tier. When several roles
// apply, the highest resulting tier wins; a principal is never penalized for
// also holding a lower-privilege role.
func TierForRoles(roles []string) Tier {
	best := TierFree
	for _, role := range roles {
		if t, ok := roleTier[role]; ok && CompareTiers(t, best) > 0 {
			best = t
		}
	}
	return best
}

var roleLevel = map[string]AccessLevel{
	RoleUser:        LevelPartial,
	RolePremiumUser: LevelPremium,
	RoleAdmin:       LevelPremium,
	RoleSuperAdmin:  LevelPremium,
}

// LevelForRoles projects a role set onto an article access level. Any
// authenticated role reads at least partial; the highest level wins.
func LevelForRoles(roles []string) AccessLevel {
	best := LevelFree
	for _, role := range roles {
		l, ok := roleLevel[role]
		if !ok {
			// Authenticated but unrecognized role still reads partial.
			l = LevelPartial
		}
		if CompareLevels(l, best) > 0 {
			best = l
		}
	}
	return best
}
