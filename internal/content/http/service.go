package contenthttp

import (
	"context"
	"log/slog"

	"github.com/studyhall-platform/studyhall/internal/access"
	"github.com/studyhall-platform/studyhall/internal/catalog"
	"github.com/studyhall-platform/studyhall/internal/consumption"
	"github.com/studyhall-platform/studyhall/internal/content"
	"github.com/studyhall-platform/studyhall/internal/principal"
)

// ContentStore loads descriptors. *content.Repository satisfies it.
type ContentStore interface {
	FindDescriptor(ctx context.Context, kind content.Kind, id int64) (content.Descriptor, error)
}

// ProgressStore reads and merges watched-seconds counters.
// *consumption.Store satisfies it.
type ProgressStore interface {
	Get(ctx context.Context, principalID, contentID int64) (*consumption.State, error)
	Report(ctx context.Context, principalID, contentID int64, watchedSeconds int) (*consumption.State, error)
}

// Service shapes content responses according to the access decision. The
// downgrade from full body to preview happens here, before any serializer
// sees the row: a partial-access response never holds the full body, not
// even transiently.
type Service struct {
	store    ContentStore
	progress ProgressStore
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(store ContentStore, progress ProgressStore, logger *slog.Logger) *Service {
	return &Service{store: store, progress: progress, logger: logger}
}

// ArticleView is the article payload after gating.
type ArticleView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Level     string `json:"level"`
	Body      string `json:"body"`
	IsPreview bool   `json:"isPreview"`
}

// Article loads and gates one article. The view is nil when neither full nor
// preview access is granted.
func (s *Service) Article(ctx context.Context, p *principal.Principal, id int64) (*ArticleView, access.Decision, error) {
	d, err := s.store.FindDescriptor(ctx, content.KindArticle, id)
	if err != nil {
		return nil, access.Decision{}, err
	}
	decision, err := access.Decide(p, d, nil)
	if err != nil {
		return nil, access.Decision{}, err
	}
	view := &ArticleView{ID: d.ID, Title: d.Title, Level: decision.Level}
	switch {
	case decision.Allowed:
		view.Body = d.Body
	case decision.PreviewAllowed:
		view.Body = d.Preview()
		view.IsPreview = true
	default:
		view = nil
	}
	return view, decision, nil
}

// VideoView is the playback grant payload after gating.
type VideoView struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	RequiredTier string `json:"requiredTier"`
	Playable     bool   `json:"playable"`
	IsPreview    bool   `json:"isPreview"`
	// RemainingSeconds is present only for time-boxed previews.
	RemainingSeconds *int `json:"remainingSeconds,omitempty"`
	UpgradeWarning   bool `json:"upgradeWarning"`
}

// Video loads and gates one video, consulting the consumption meter for
// sub-tier principals with a time-boxed preview.
func (s *Service) Video(ctx context.Context, p *principal.Principal, id int64) (*VideoView, access.Decision, error) {
	d, err := s.store.FindDescriptor(ctx, content.KindVideo, id)
	if err != nil {
		return nil, access.Decision{}, err
	}
	state, err := s.loadState(ctx, p, d.ID)
	if err != nil {
		return nil, access.Decision{}, err
	}
	decision, err := access.Decide(p, d, state)
	if err != nil {
		return nil, access.Decision{}, err
	}
	return s.videoView(p, d, state, decision), decision, nil
}

// ProgressReport is a validated watched-seconds report.
type ProgressReport struct {
	WatchedSeconds int `json:"watchedSeconds" validate:"gte=0"`
}

// ReportProgress merges a progress report and re-evaluates the grant so the
// player learns immediately when the preview runs out.
func (s *Service) ReportProgress(ctx context.Context, p *principal.Principal, id int64, report ProgressReport) (*VideoView, access.Decision, error) {
	d, err := s.store.FindDescriptor(ctx, content.KindVideo, id)
	if err != nil {
		return nil, access.Decision{}, err
	}
	state, err := s.progress.Report(ctx, p.ID, d.ID, report.WatchedSeconds)
	if err != nil {
		return nil, access.Decision{}, err
	}
	decision, err := access.Decide(p, d, state)
	if err != nil {
		return nil, access.Decision{}, err
	}
	return s.videoView(p, d, state, decision), decision, nil
}

func (s *Service) loadState(ctx context.Context, p *principal.Principal, contentID int64) (*consumption.State, error) {
	if p == nil || s.progress == nil {
		return nil, nil
	}
	return s.progress.Get(ctx, p.ID, contentID)
}

func (s *Service) videoView(p *principal.Principal, d content.Descriptor, state *consumption.State, decision access.Decision) *VideoView {
	view := &VideoView{
		ID:           d.ID,
		Title:        d.Title,
		RequiredTier: string(d.RequiredTier),
		Playable:     decision.Allowed,
	}
	subTier := p == nil || catalog.CompareTiers(p.MembershipTier, d.RequiredTier) < 0
	if !subTier {
		return view
	}
	view.IsPreview = decision.Allowed
	if d.PreviewCapSeconds != nil {
		remaining := consumption.Remaining(d, state)
		view.RemainingSeconds = &remaining
		view.UpgradeWarning = consumption.ShouldWarn(d, state)
	}
	return view
}

// ThreadView is the forum thread payload; reading is never gated.
type ThreadView struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	CanPost bool   `json:"canPost"`
}

// Thread loads one forum thread and reports whether the requester may post.
func (s *Service) Thread(ctx context.Context, p *principal.Principal, id int64) (*ThreadView, error) {
	d, err := s.store.FindDescriptor(ctx, content.KindForumThread, id)
	if err != nil {
		return nil, err
	}
	decision, err := access.Decide(p, d, nil)
	if err != nil {
		return nil, err
	}
	return &ThreadView{ID: d.ID, Title: d.Title, Body: d.Body, CanPost: decision.Allowed}, nil
}
