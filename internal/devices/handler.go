package devices

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
)

// Handler exposes device registry and token endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw}
}

// MountRoutes attaches device routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("devices.view", "devices.manage"))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
		r.Get("/{id}/tokens", h.listTokens)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("devices.manage"))
		r.Post("/", h.register)
		r.Post("/{id}/lock", h.lock)
		r.Post("/{id}/unlock", h.unlock)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("devices.token.issue"))
		r.Post("/{id}/tokens", h.issueToken)
		r.Delete("/tokens/{tokenID}", h.revokeToken)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var state *State
	if raw := q.Get("state"); raw != "" {
		s := State(raw)
		if s != StateAvailable && s != StateAssigned && s != StateLocked {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid state filter")
			return
		}
		state = &s
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, err := h.service.List(r.Context(), state, limit, offset)
	if err != nil {
		h.logger.Error("list devices", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"devices": list})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid device id")
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get device")
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

type registerRequest struct {
	Serial    string `json:"serial"`
	ProductID int64  `json:"productId"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	d, err := h.service.Register(r.Context(), req.Serial, req.ProductID)
	if err != nil {
		h.respondError(w, err, "register device")
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) lock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Lock, "lock device")
}

func (h *Handler) unlock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Unlock, "unlock device")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, actorID int64) error, op string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid device id")
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	if err := fn(r.Context(), id, actorID); err != nil {
		h.respondError(w, err, op)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

type issueTokenRequest struct {
	ValidityHours int `json:"validityHours"`
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid device id")
		return
	}
	var req issueTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	token, err := h.service.IssueToken(r.Context(), id, time.Duration(req.ValidityHours)*time.Hour, actorID)
	if err != nil {
		h.respondError(w, err, "issue token")
		return
	}
	httpx.JSON(w, http.StatusCreated, token)
}

func (h *Handler) listTokens(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid device id")
		return
	}
	tokens, err := h.service.ListTokens(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "list tokens")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (h *Handler) revokeToken(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseInt(chi.URLParam(r, "tokenID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid token id")
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	if err := h.service.RevokeToken(r.Context(), tokenID, actorID); err != nil {
		h.respondError(w, err, "revoke token")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "revoked"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "not found")
	case errors.Is(err, ErrAlreadyExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "serial already registered")
	case errors.Is(err, ErrNotAvailable), errors.Is(err, ErrInvalidWindow):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
