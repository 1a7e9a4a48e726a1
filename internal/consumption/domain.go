package consumption

import "time"

// State tracks how many seconds of one video a principal has consumed.
// WatchedSeconds is monotonically non-decreasing: progress reports merge by
// max, never overwrite, so duplicate or out-of-order reports cannot regress
// the counter. The stored value is never clamped; a later tier change can
// recompute against true historical watch time.
type State struct {
	PrincipalID    int64
	ContentID      int64
	WatchedSeconds int
	UpdatedAt      time.Time
}
