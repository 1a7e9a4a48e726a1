// Package access holds the pure decision engine and the API guard that
// enforces it. The engine is a total function over its inputs: it never
// performs I/O, never caches, and returns an error only for malformed
// descriptors.
package access

import (
	"github.com/studyhall-platform/studyhall/internal/catalog"
	"github.com/studyhall-platform/studyhall/internal/consumption"
	"github.com/studyhall-platform/studyhall/internal/content"
	"github.com/studyhall-platform/studyhall/internal/principal"
)

// Decision is the engine's verdict, consumed identically by every
// enforcement surface.
type Decision struct {
	// Allowed grants full access.
	Allowed bool
	// PreviewAllowed permits a truncated or time-boxed view when Allowed is
	// false. When both are false the response must carry no content body.
	PreviewAllowed bool
	// Level is the tier or access level the requirement was evaluated
	// against.
	Level string
	// Reason is set exactly when Allowed is false.
	Reason Reason
	// RequiredAction follows Reason per the fixed taxonomy mapping.
	RequiredAction Action
}

func allow(level string) Decision {
	return Decision{Allowed: true, PreviewAllowed: true, Level: level}
}

func deny(level string, preview bool, reason Reason, kind content.Kind) Decision {
	return Decision{
		PreviewAllowed: preview,
		Level:          level,
		Reason:         reason,
		RequiredAction: reason.RequiredAction(kind),
	}
}

// Decide evaluates one principal against one descriptor. p is nil for
// anonymous requesters. state carries the watched-seconds counter for
// consumption-limited video and may be nil.
//
// For forum threads Decide gates posting; reading a thread is always
// permitted and surfaces do not consult the engine for it.
func Decide(p *principal.Principal, d content.Descriptor, state *consumption.State) (Decision, error) {
	if err := d.Validate(); err != nil {
		return Decision{}, err
	}
	switch d.Kind {
	case content.KindArticle:
		return decideArticle(p, d), nil
	case content.KindVideo:
		return decideVideo(p, d, state), nil
	default:
		return decideForumPost(p, d), nil
	}
}

// decideArticle gates on the article access-level axis. Every non-granted
// article still exposes its preview substring: the product rule is "always
// show a teaser".
func decideArticle(p *principal.Principal, d content.Descriptor) Decision {
	level := string(d.AccessLevel)
	effective := catalog.LevelFree
	if p != nil {
		effective = catalog.LevelForRoles(p.Roles)
	}
	if catalog.CompareLevels(effective, d.AccessLevel) >= 0 {
		return allow(level)
	}
	reason := ReasonInsufficientRole
	if p == nil {
		reason = ReasonNotAuthenticated
	}
	return deny(level, true, reason, d.Kind)
}

// decideVideo gates on the membership-tier axis. Below-tier principals with a
// capped preview receive temporary full access until the cap is consumed;
// this is the asymmetry versus articles, whose gating is content-boxed
// rather than time-boxed.
func decideVideo(p *principal.Principal, d content.Descriptor, state *consumption.State) Decision {
	level := string(d.RequiredTier)
	tier := catalog.TierFree
	if p != nil {
		tier = p.MembershipTier
	}
	if catalog.CompareTiers(tier, d.RequiredTier) >= 0 {
		return allow(level)
	}

	if d.PreviewCapSeconds != nil && state != nil {
		if consumption.Remaining(d, state) > 0 {
			// Inside the time-boxed preview: full access, not a truncated
			// body. The meter never flips this itself; the cap is read here.
			return allow(level)
		}
		return deny(level, false, ReasonPreviewExhausted, d.Kind)
	}

	reason := ReasonInsufficientTier
	if p == nil {
		reason = ReasonNotAuthenticated
	}
	return deny(level, d.PreviewCapSeconds != nil, reason, d.Kind)
}

// decideForumPost gates thread creation and replies on role membership.
// Legacy single-role values arrive already reconciled into the structured
// vocabulary by the principal resolver.
func decideForumPost(p *principal.Principal, d content.Descriptor) Decision {
	if p == nil {
		return deny("", false, ReasonNotAuthenticated, d.Kind)
	}
	if p.HasAnyRole(catalog.RolePremiumUser, catalog.RoleAdmin, catalog.RoleSuperAdmin) {
		return allow("")
	}
	return deny("", false, ReasonInsufficientRole, d.Kind)
}

// DecideRoute is the coarse form used by the route middleware, where the
// route itself is the protected content and only role membership applies.
func DecideRoute(p *principal.Principal, requiredRoles ...string) Decision {
	if p == nil {
		return Decision{Reason: ReasonNotAuthenticated, RequiredAction: ActionSignIn}
	}
	if len(requiredRoles) == 0 || p.HasAnyRole(requiredRoles...) {
		return Decision{Allowed: true, PreviewAllowed: true}
	}
	return Decision{Reason: ReasonInsufficientRole, RequiredAction: ActionUpgrade}
}
