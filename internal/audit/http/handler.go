package audithttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/studyhall-platform/studyhall/internal/audit"
	"github.com/studyhall-platform/studyhall/internal/platform/httpx"
)

const rateLimit = 10
const rateWindow = time.Minute

// Handler serves the operator audit timeline.
type Handler struct {
	logger  *slog.Logger
	service *audit.Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *audit.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches audit routes. Mounted under the admin route guard.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.With(httprate.LimitByIP(rateLimit, rateWindow)).Get("/", h.timeline)
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	result, err := h.service.Timeline(r.Context(), audit.TimelineFilters{
		Action:  q.Get("action"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		if h.logger != nil {
			h.logger.Error("audit timeline", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"events": result.Rows,
		"paging": map[string]int{
			"page":       result.Paging.Page,
			"perPage":    result.Paging.PerPage,
			"total":      result.Paging.Total,
			"totalPages": result.Paging.TotalPages,
		},
	})
}
