package consumption

import "github.com/studyhall-platform/studyhall/internal/content"

// Unlimited is the sentinel returned by Remaining when the descriptor has no
// preview cap. Callers must check it instead of comparing against a large
// number.
const Unlimited = -1

// warnThreshold is the consumed fraction of the cap at which surfaces start
// showing an upgrade warning.
const warnThreshold = 0.8

// Remaining returns how many seconds of preview the state still allows for
// the descriptor, or Unlimited when the descriptor carries no cap. The
// watched value is clamped to [0, cap] for this calculation only; the stored
// counter is left untouched.
func Remaining(d content.Descriptor, s *State) int {
	if d.PreviewCapSeconds == nil {
		return Unlimited
	}
	cap := *d.PreviewCapSeconds
	if cap < 0 {
		cap = 0
	}
	watched := 0
	if s != nil {
		watched = s.WatchedSeconds
	}
	if watched < 0 {
		watched = 0
	}
	if watched > cap {
		watched = cap
	}
	return cap - watched
}

// ShouldWarn reports whether at least 80% of the preview cap has been
// consumed. Uncapped descriptors never warn.
func ShouldWarn(d content.Descriptor, s *State) bool {
	if d.PreviewCapSeconds == nil {
		return false
	}
	cap := *d.PreviewCapSeconds
	if cap <= 0 {
		return true
	}
	watched := 0
	if s != nil {
		watched = s.WatchedSeconds
	}
	if watched < 0 {
		watched = 0
	}
	return float64(watched) >= warnThreshold*float64(cap)
}
