package contenthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/studyhall-platform/studyhall/internal/access"
	"github.com/studyhall-platform/studyhall/internal/consumption"
	"github.com/studyhall-platform/studyhall/internal/content"
	"github.com/studyhall-platform/studyhall/internal/forum"
	"github.com/studyhall-platform/studyhall/internal/platform/httpx"
	"github.com/studyhall-platform/studyhall/internal/principal"
)

// ForumWriter persists gated forum posts. *forum.Repository satisfies it.
type ForumWriter interface {
	CreateThread(ctx context.Context, authorID int64, title, body string) (forum.Thread, error)
	CreateReply(ctx context.Context, threadID, authorID int64, body string) (forum.Reply, error)
}

// Handler wires the content API endpoints behind the access guard.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	store     ContentStore
	progress  ProgressStore
	forum     ForumWriter
	guard     access.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, store ContentStore, progress ProgressStore, forumWriter ForumWriter, guard access.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		store:     store,
		progress:  progress,
		forum:     forumWriter,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers the content API under the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Authorize("article", access.ActionRead, h.descriptorLoader(content.KindArticle), nil)).
		Get("/articles/{id}", h.getArticle)
	r.With(h.guard.Authorize("video", access.ActionRead, h.descriptorLoader(content.KindVideo), h.stateLoader)).
		Get("/videos/{id}", h.getVideo)
	r.Post("/videos/{id}/progress", h.postProgress)
	r.With(h.guard.Authorize("forum_thread", access.ActionRead, h.descriptorLoader(content.KindForumThread), nil)).
		Get("/forum/threads/{id}", h.getThread)
	r.With(h.guard.Authorize("forum_thread", access.ActionPost, newThreadDescriptor, nil)).
		Post("/forum/threads", h.createThread)
	r.With(h.guard.Authorize("forum_thread", access.ActionPost, h.descriptorLoader(content.KindForumThread), nil)).
		Post("/forum/threads/{id}/replies", h.createReply)
}

func (h *Handler) descriptorLoader(kind content.Kind) access.DescriptorLoader {
	return func(r *http.Request) (content.Descriptor, error) {
		id, err := pathID(r)
		if err != nil {
			return content.Descriptor{}, content.ErrNotFound
		}
		return h.store.FindDescriptor(r.Context(), kind, id)
	}
}

// newThreadDescriptor gates thread creation: there is no stored row yet, so
// the guard evaluates a bare forum descriptor (the posting gate is role-only).
func newThreadDescriptor(_ *http.Request) (content.Descriptor, error) {
	return content.Descriptor{Kind: content.KindForumThread}, nil
}

func (h *Handler) stateLoader(r *http.Request, p *principal.Principal) (*consumption.State, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, nil
	}
	return h.progress.Get(r.Context(), p.ID, id)
}

func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", string(access.ReasonContentNotFound))
		return
	}
	p := principal.FromContext(r.Context())
	view, decision, err := h.service.Article(r.Context(), p, id)
	if err != nil {
		h.respondError(w, "article", err)
		return
	}
	if view == nil {
		h.guard.Deny(w, decision)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) getVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", string(access.ReasonContentNotFound))
		return
	}
	p := principal.FromContext(r.Context())
	view, _, err := h.service.Video(r.Context(), p, id)
	if err != nil {
		h.respondError(w, "video", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) postProgress(w http.ResponseWriter, r *http.Request) {
	p := principal.FromContext(r.Context())
	if p == nil {
		h.guard.Deny(w, access.Decision{
			Reason:         access.ReasonNotAuthenticated,
			RequiredAction: access.ActionSignIn,
		})
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", string(access.ReasonContentNotFound))
		return
	}
	var report ProgressReport
	if err := httpx.DecodeJSON(r, &report); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(report); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	view, _, err := h.service.ReportProgress(r.Context(), p, id, report)
	if err != nil {
		h.respondError(w, "progress", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) getThread(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", string(access.ReasonContentNotFound))
		return
	}
	p := principal.FromContext(r.Context())
	view, err := h.service.Thread(r.Context(), p, id)
	if err != nil {
		h.respondError(w, "thread", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type createThreadForm struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required"`
}

func (h *Handler) createThread(w http.ResponseWriter, r *http.Request) {
	p := principal.FromContext(r.Context())
	var form createThreadForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	thread, err := h.forum.CreateThread(r.Context(), p.ID, form.Title, form.Body)
	if err != nil {
		h.respondError(w, "create thread", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, thread)
}

type createReplyForm struct {
	Body string `json:"body" validate:"required"`
}

func (h *Handler) createReply(w http.ResponseWriter, r *http.Request) {
	p := principal.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", string(access.ReasonContentNotFound))
		return
	}
	var form createReplyForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	reply, err := h.forum.CreateReply(r.Context(), id, p.ID, form.Body)
	if err != nil {
		h.respondError(w, "create reply", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reply)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", string(access.ReasonContentNotFound))
	case errors.Is(err, content.ErrMalformed):
		h.logError(op, err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	default:
		h.logError(op, err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) logError(op string, err error) {
	if h.logger != nil {
		h.logger.Error("content "+op, slog.Any("error", err))
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
