package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
)

// Handler exposes the badge counter endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches stats routes. Any signed-in dashboard user may read
// the counters, so no specific permission is required.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/badges", h.badges)
}

func (h *Handler) badges(w http.ResponseWriter, r *http.Request) {
	if _, ok := rbac.CurrentUserID(r); !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	badges, err := h.service.Badges(r.Context())
	if err != nil {
		h.logger.Error("fetch badges", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, badges)
}
