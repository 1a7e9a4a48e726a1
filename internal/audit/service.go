// Package audit exposes the recorded gating events to operators. Override
// uses are the headline entry: the escape hatch is acceptable only while
// every use of it stays visible.
package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/studyhall-platform/studyhall/internal/shared"
)

// Event is one recorded gating event.
type Event struct {
	ID         int64          `json:"id"`
	ActorID    int64          `json:"actorId"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entityId"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt string         `json:"occurredAt"`
}

// TimelineFilters narrows the event listing.
type TimelineFilters struct {
	Action  string
	Page    int
	PerPage int
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows   []Event
	Paging shared.Pagination
}

// Repository provides access to the stored events.
type Repository interface {
	ListEvents(ctx context.Context, action string, limit, offset int) ([]Event, error)
	CountEvents(ctx context.Context, action string) (int, error)
}

// Service coordinates timeline reads.
type Service struct {
	repo Repository
}

// NewService constructs an audit timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline fetches events with paging, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	action := strings.TrimSpace(filters.Action)
	perPage := filters.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	total, err := s.repo.CountEvents(ctx, action)
	if err != nil {
		return Result{}, err
	}
	rows, err := s.repo.ListEvents(ctx, action, perPage, (page-1)*perPage)
	if err != nil {
		return Result{}, err
	}
	return Result{Rows: rows, Paging: shared.NewPagination(page, perPage, total)}, nil
}
