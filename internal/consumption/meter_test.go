package consumption

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyhall-platform/studyhall/internal/catalog"
	"github.com/studyhall-platform/studyhall/internal/content"
)

func capped(cap int) content.Descriptor {
	return content.Descriptor{
		ID: 1, Kind: content.KindVideo, RequiredTier: catalog.TierPremium,
		PreviewCapSeconds: &cap,
	}
}

func uncapped() content.Descriptor {
	return content.Descriptor{ID: 1, Kind: content.KindVideo, RequiredTier: catalog.TierPremium}
}

func TestRemainingUncappedIsUnlimited(t *testing.T) {
	assert.Equal(t, Unlimited, Remaining(uncapped(), nil))
	assert.Equal(t, Unlimited, Remaining(uncapped(), &State{WatchedSeconds: 99999}))
}

func TestRemainingCounts(t *testing.T) {
	d := capped(120)
	assert.Equal(t, 120, Remaining(d, nil))
	assert.Equal(t, 90, Remaining(d, &State{WatchedSeconds: 30}))
	assert.Equal(t, 0, Remaining(d, &State{WatchedSeconds: 120}))
}

func TestRemainingClampsOutOfRangeCounters(t *testing.T) {
	d := capped(60)
	assert.Equal(t, 0, Remaining(d, &State{WatchedSeconds: 6000}), "over-consumed never goes negative")
	assert.Equal(t, 60, Remaining(d, &State{WatchedSeconds: -5}))
}

func TestRemainingZeroCap(t *testing.T) {
	assert.Equal(t, 0, Remaining(capped(0), nil))
}

func TestShouldWarn(t *testing.T) {
	d := capped(100)
	assert.False(t, ShouldWarn(d, nil))
	assert.False(t, ShouldWarn(d, &State{WatchedSeconds: 79}))
	assert.True(t, ShouldWarn(d, &State{WatchedSeconds: 80}))
	assert.True(t, ShouldWarn(d, &State{WatchedSeconds: 100}))
	assert.True(t, ShouldWarn(d, &State{WatchedSeconds: 100000}))
}

func TestShouldWarnUncappedNever(t *testing.T) {
	assert.False(t, ShouldWarn(uncapped(), &State{WatchedSeconds: 100000}))
}

func TestShouldWarnZeroCapAlways(t *testing.T) {
	assert.True(t, ShouldWarn(capped(0), nil))
}
