package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall-platform/studyhall/internal/catalog"
	"github.com/studyhall-platform/studyhall/internal/consumption"
	"github.com/studyhall-platform/studyhall/internal/content"
	"github.com/studyhall-platform/studyhall/internal/principal"
)

func intPtr(v int) *int { return &v }

func article(level catalog.AccessLevel) content.Descriptor {
	return content.Descriptor{ID: 1, Kind: content.KindArticle, Title: "a", AccessLevel: level, Body: "body"}
}

func video(tier catalog.Tier, cap *int) content.Descriptor {
	return content.Descriptor{ID: 2, Kind: content.KindVideo, Title: "v", RequiredTier: tier, PreviewCapSeconds: cap, Body: "v.mp4"}
}

func thread() content.Descriptor {
	return content.Descriptor{ID: 3, Kind: content.KindForumThread, Title: "t", Body: "body"}
}

func principalWith(roles ...string) *principal.Principal {
	return &principal.Principal{
		ID:             7,
		Roles:          roles,
		MembershipTier: catalog.TierForRoles(roles),
	}
}

func TestDecideAnonymousFreeArticle(t *testing.T) {
	d, err := Decide(nil, article(catalog.LevelFree), nil)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.True(t, d.PreviewAllowed)
	assert.Empty(t, d.Reason)
}

func TestDecideAnonymousPartialArticle(t *testing.T) {
	d, err := Decide(nil, article(catalog.LevelPartial), nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, d.PreviewAllowed)
	assert.Equal(t, ReasonNotAuthenticated, d.Reason)
	assert.Equal(t, ActionSignIn, d.RequiredAction)
}

func TestDecideUnpaidUserGetsPartialNotPremium(t *testing.T) {
	p := principalWith(catalog.RoleUser)

	d, err := Decide(p, article(catalog.LevelPartial), nil)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = Decide(p, article(catalog.LevelPremium), nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, d.PreviewAllowed, "denied articles still expose a teaser")
	assert.Equal(t, ReasonInsufficientRole, d.Reason)
	assert.Equal(t, ActionUpgrade, d.RequiredAction)
}

func TestDecidePremiumRolesReachPremiumArticles(t *testing.T) {
	for _, roles := range [][]string{
		{catalog.RolePremiumUser},
		{catalog.RoleAdmin},
		{catalog.RoleSuperAdmin},
	} {
		d, err := Decide(principalWith(roles...), article(catalog.LevelPremium), nil)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "roles %v", roles)
	}
}

func TestDecideVideoTierSatisfied(t *testing.T) {
	p := principalWith(catalog.RolePremiumUser)
	d, err := Decide(p, video(catalog.TierPremium, intPtr(120)), nil)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "at-tier access ignores the preview cap")
}

func TestDecideVideoPreviewWindow(t *testing.T) {
	p := principalWith(catalog.RoleUser)
	desc := video(catalog.TierPremium, intPtr(120))

	// 30 of 120 preview seconds consumed: temporary full access.
	d, err := Decide(p, desc, &consumption.State{PrincipalID: 7, ContentID: 2, WatchedSeconds: 30})
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// Cap reached: hard deny with no preview left to offer.
	d, err = Decide(p, desc, &consumption.State{PrincipalID: 7, ContentID: 2, WatchedSeconds: 120})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.False(t, d.PreviewAllowed)
	assert.Equal(t, ReasonPreviewExhausted, d.Reason)
	assert.Equal(t, ActionUpgrade, d.RequiredAction)
}

func TestDecideVideoOverConsumedCounterStillDenies(t *testing.T) {
	// A counter above the cap (duplicate or late reports) must behave exactly
	// like a counter at the cap.
	p := principalWith(catalog.RoleUser)
	d, err := Decide(p, video(catalog.TierPremium, intPtr(60)), &consumption.State{WatchedSeconds: 6000})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonPreviewExhausted, d.Reason)
}

func TestDecideVideoNoStateYet(t *testing.T) {
	// No playback reported: the cap exists, the preview is open.
	p := principalWith(catalog.RoleUser)
	d, err := Decide(p, video(catalog.TierPremium, intPtr(60)), nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, d.PreviewAllowed)
	assert.Equal(t, ReasonInsufficientTier, d.Reason)
}

func TestDecideVideoUncappedBelowTier(t *testing.T) {
	p := principalWith(catalog.RoleUser)
	d, err := Decide(p, video(catalog.TierEnterprise, nil), nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.False(t, d.PreviewAllowed, "no cap means no preview window")
	assert.Equal(t, ReasonInsufficientTier, d.Reason)
}

func TestDecideVideoAnonymous(t *testing.T) {
	d, err := Decide(nil, video(catalog.TierBasic, nil), nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotAuthenticated, d.Reason)
	assert.Equal(t, ActionSignIn, d.RequiredAction)

	d, err = Decide(nil, video(catalog.TierFree, nil), nil)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestDecideForumPosting(t *testing.T) {
	d, err := Decide(nil, thread(), nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotAuthenticated, d.Reason)

	d, err = Decide(principalWith(catalog.RoleUser), thread(), nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.False(t, d.PreviewAllowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	d, err = Decide(principalWith(catalog.RolePremiumUser), thread(), nil)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestDecideMalformedDescriptor(t *testing.T) {
	bad := content.Descriptor{ID: 9, Kind: content.KindArticle, AccessLevel: "gold"}
	_, err := Decide(principalWith(catalog.RoleAdmin), bad, nil)
	require.ErrorIs(t, err, content.ErrMalformed)

	mixed := video(catalog.TierBasic, nil)
	mixed.AccessLevel = catalog.LevelPremium
	_, err = Decide(nil, mixed, nil)
	require.ErrorIs(t, err, content.ErrMalformed)
}

func TestDecideIsDeterministic(t *testing.T) {
	p := principalWith(catalog.RoleUser)
	desc := video(catalog.TierPremium, intPtr(90))
	state := &consumption.State{WatchedSeconds: 45}
	first, err := Decide(p, desc, state)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Decide(p, desc, state)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDecideRoute(t *testing.T) {
	d := DecideRoute(nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotAuthenticated, d.Reason)

	d = DecideRoute(principalWith(catalog.RoleUser))
	assert.True(t, d.Allowed, "no role list means any authenticated principal")

	d = DecideRoute(principalWith(catalog.RoleUser), catalog.RoleAdmin, catalog.RoleSuperAdmin)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	d = DecideRoute(principalWith(catalog.RoleAdmin), catalog.RoleAdmin, catalog.RoleSuperAdmin)
	assert.True(t, d.Allowed)
}
