package resource

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursedesk/coursedesk/internal/platform/httpx"
	"github.com/coursedesk/coursedesk/internal/shared"
)

// Handler exposes one engine instance as a JSON resource. Every entity kind
// shares this handler; there is no per-kind HTTP code.
type Handler struct {
	logger *slog.Logger
	svc    *Service
}

// NewHandler constructs the generic resource handler.
func NewHandler(logger *slog.Logger, svc *Service) *Handler {
	return &Handler{logger: logger, svc: svc}
}

// MountRoutes registers the entity routes, plus comment routes when the
// descriptor declares a comment sub-resource.
func (h *Handler) MountRoutes(r chi.Router) {
	d := h.svc.Descriptor()
	r.Route("/"+d.Kind, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		if d.Comments != nil {
			r.Get("/{id}/comments", h.listComments)
			r.Post("/{id}/comments", h.addComment)
			r.Delete("/comments/{commentID}", h.deleteComment)
		}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	records, err := h.svc.List(r.Context(), shared.PrincipalFromContext(r.Context()), ListQuery{
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
		Search: query.Get("search"),
	})
	if err != nil {
		h.respondError(w, r, "list", err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.CoercePositiveInt(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	record, err := h.svc.Get(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, r, "get", err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.DecodePayload(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	id, err := h.svc.Create(r.Context(), shared.PrincipalFromContext(r.Context()), payload)
	if err != nil {
		h.respondError(w, r, "create", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.CoercePositiveInt(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payload, err := httpx.DecodePayload(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.svc.Update(r.Context(), shared.PrincipalFromContext(r.Context()), id, payload); err != nil {
		h.respondError(w, r, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Updated."})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.CoercePositiveInt(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondError(w, r, "delete", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Deleted."})
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	parentID, err := shared.CoercePositiveInt(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError(h.svc.Descriptor().Comments.ParentColumn))
		return
	}
	comments, err := h.svc.ListComments(r.Context(), shared.PrincipalFromContext(r.Context()), parentID)
	if err != nil {
		h.respondError(w, r, "list comments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, comments)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	parentID, err := shared.CoercePositiveInt(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError(h.svc.Descriptor().Comments.ParentColumn))
		return
	}
	payload, err := httpx.DecodePayload(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	id, err := h.svc.AddComment(r.Context(), shared.PrincipalFromContext(r.Context()), parentID, payload)
	if err != nil {
		h.respondError(w, r, "add comment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := shared.CoercePositiveInt(chi.URLParam(r, "commentID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.svc.DeleteComment(r.Context(), shared.PrincipalFromContext(r.Context()), commentID); err != nil {
		h.respondError(w, r, "delete comment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Comment removed."})
}

// respondError logs storage faults with their cause and maps everything to
// the uniform status contract.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if _, ok := shared.AsValidation(err); !ok {
		switch err {
		case shared.ErrNotFound, shared.ErrUnauthorized, shared.ErrForbidden:
		default:
			h.logger.Error(h.svc.Descriptor().Kind+" "+op+" failed",
				slog.Any("error", err), slog.String("path", r.URL.Path))
		}
	}
	httpx.RespondError(w, err)
}
