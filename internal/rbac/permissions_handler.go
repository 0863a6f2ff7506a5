package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
)

func paramInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// PermissionsHandler exposes the permission catalogue and role bindings.
type PermissionsHandler struct {
	logger  *slog.Logger
	service *Service
	rbac    Middleware
}

// NewPermissionsHandler constructs the handler.
func NewPermissionsHandler(logger *slog.Logger, service *Service, mw Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service, rbac: mw}
}

// MountRoutes attaches permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("permissions.view", "roles.manage"))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("roles.manage"))
		r.Put("/roles/{roleID}", h.setRolePermissions)
	})
}

func (h *PermissionsHandler) list(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": perms})
}

type setRolePermissionsRequest struct {
	PermissionIDs []int64 `json:"permission_ids"`
}

func (h *PermissionsHandler) setRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := paramInt64(r, "roleID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid role id")
		return
	}
	var req setRolePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	if err := h.service.SetRolePermissions(r.Context(), roleID, req.PermissionIDs); err != nil {
		h.logger.Error("set role permissions", slog.Any("error", err), slog.Int64("role_id", roleID))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}
