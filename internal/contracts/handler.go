package contracts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
)

// Handler exposes contract endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw}
}

// MountRoutes attaches contract routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("contracts.view", "contracts.manage"))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("contracts.manage"))
		r.Post("/{id}/status", h.transition)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var status *Status
	if raw := q.Get("status"); raw != "" {
		s := Status(raw)
		switch s {
		case StatusActive, StatusCompleted, StatusDefaulted, StatusCancelled:
			status = &s
		default:
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid status filter")
			return
		}
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		h.logger.Error("list contracts", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"contracts": list})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid contract id")
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get contract")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

type transitionRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid contract id")
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	c, err := h.service.Transition(r.Context(), id, req.Status, actorID)
	if err != nil {
		h.respondError(w, err, "transition contract")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "contract not found")
	case errors.Is(err, ErrBadTransition), errors.Is(err, ErrInvalidTerms):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
