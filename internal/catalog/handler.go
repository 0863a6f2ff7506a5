package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler exposes product and category endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
	rbac   rbac.Middleware
}

func NewHandler(logger *slog.Logger, repo *Repository, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, rbac: mw}
}

// MountProductRoutes attaches product routes.
func (h *Handler) MountProductRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("catalog.view", "catalog.manage"))
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.showProduct)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("catalog.manage"))
		r.Post("/", h.createProduct)
		r.Put("/{id}", h.updateProduct)
	})
}

// MountCategoryRoutes attaches category routes.
func (h *Handler) MountCategoryRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("catalog.view", "catalog.manage"))
		r.Get("/", h.listCategories)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("catalog.manage"))
		r.Post("/", h.createCategory)
		r.Put("/{id}", h.updateCategory)
		r.Delete("/{id}", h.deleteCategory)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	req := ListProductsRequest{Limit: 50}
	q := r.URL.Query()
	if raw := q.Get("productCategoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid productCategoryId")
			return
		}
		req.CategoryID = &id
	}
	if s := q.Get("search"); s != "" {
		req.Search = &s
	}
	req.ActiveOnly = q.Get("active") == "true"
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		req.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n >= 0 {
		req.Offset = n
	}

	list, total, err := h.repo.ListProducts(r.Context(), req)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": list, "total": total})
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	p, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get product")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	if err := validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	id, err := h.repo.CreateProduct(r.Context(), in)
	if err != nil {
		h.respondError(w, err, "create product")
		return
	}
	p, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get product")
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var in ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	if err := validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	if err := h.repo.UpdateProduct(r.Context(), id, in); err != nil {
		h.respondError(w, err, "update product")
		return
	}
	p, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get product")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": list})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "name must be at least 2 characters")
		return
	}
	c, err := h.repo.CreateCategory(r.Context(), name)
	if err != nil {
		h.respondError(w, err, "create category")
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category id")
		return
	}
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "name must be at least 2 characters")
		return
	}
	if err := h.repo.UpdateCategory(r.Context(), id, name); err != nil {
		h.respondError(w, err, "update category")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category id")
		return
	}
	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		h.respondError(w, err, "delete category")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "not found")
	case errors.Is(err, ErrAlreadyExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "already exists")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
