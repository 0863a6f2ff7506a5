package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
	"github.com/suncore-erp/suncore/internal/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler exposes user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbacSvc *rbac.Service
	rbac    rbac.Middleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, rbacSvc *rbac.Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbacSvc: rbacSvc, rbac: mw}
}

// MountRoutes attaches user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("users.view", "users.manage"))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("users.manage"))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Put("/{id}/password", h.setPassword)
		r.Post("/{id}/roles/{roleID}", h.assignRole)
		r.Delete("/{id}/roles/{roleID}", h.removeRole)
		r.Delete("/{id}", h.delete)
	})
}

func paramInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	list, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": list, "pagination": pagination})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get user")
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	if err := validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	u, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondError(w, err, "create user")
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	if err := validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	u, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.respondError(w, err, "update user")
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) setPassword(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req setPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	if err := h.service.SetPassword(r.Context(), id, req.Password); err != nil {
		h.respondError(w, err, "set password")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, err1 := paramInt64(r, "id")
	roleID, err2 := paramInt64(r, "roleID")
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.rbacSvc.AssignRole(r.Context(), userID, roleID); err != nil {
		h.respondError(w, err, "assign role")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "assigned"})
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	userID, err1 := paramInt64(r, "id")
	roleID, err2 := paramInt64(r, "roleID")
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.rbacSvc.RemoveRole(r.Context(), userID, roleID); err != nil {
		h.respondError(w, err, "remove role")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "removed"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete user")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "email already in use")
	case errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
