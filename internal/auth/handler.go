package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
	"github.com/suncore-erp/suncore/internal/shared"
	"github.com/suncore-erp/suncore/internal/users"
)

// Handler exposes sign in and sign out endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	users    *users.Service
	onLogout func(sessionID string)
}

// NewHandler constructs the handler. onLogout runs when a session is
// destroyed so per-session state elsewhere (sale drafts) goes with it;
// nil is fine.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, userSvc *users.Service, onLogout func(sessionID string)) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, users: userSvc, onLogout: onLogout}
}

// MountRoutes attaches auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}

	u, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("login", slog.String("error", "no session on context"))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(u.ID, 10))

	httpx.JSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":        u.ID,
			"email":     u.Email,
			"full_name": u.FullName,
		},
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if h.onLogout != nil {
			h.onLogout(sess.ID)
		}
		h.sessions.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "signed_out"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := rbac.CurrentUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		h.logger.Error("me", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
