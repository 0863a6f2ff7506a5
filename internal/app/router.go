package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/suncore-erp/suncore/internal/agents"
	"github.com/suncore-erp/suncore/internal/auth"
	"github.com/suncore-erp/suncore/internal/catalog"
	"github.com/suncore-erp/suncore/internal/contracts"
	"github.com/suncore-erp/suncore/internal/customers"
	"github.com/suncore-erp/suncore/internal/devices"
	"github.com/suncore-erp/suncore/internal/inventory"
	"github.com/suncore-erp/suncore/internal/rbac"
	"github.com/suncore-erp/suncore/internal/roles"
	"github.com/suncore-erp/suncore/internal/sales"
	"github.com/suncore-erp/suncore/internal/shared"
	"github.com/suncore-erp/suncore/internal/stats"
	"github.com/suncore-erp/suncore/internal/users"
	"github.com/suncore-erp/suncore/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *rbac.PermissionsHandler
	CustomersHandler   *customers.Handler
	AgentsHandler      *agents.Handler
	CatalogHandler     *catalog.Handler
	InventoryHandler   *inventory.Handler
	DevicesHandler     *devices.Handler
	ContractsHandler   *contracts.Handler
	SalesHandler       *sales.Handler
	StatsHandler       *stats.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with Suncore defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/roles", params.RolesHandler.MountRoutes)
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/agents", params.AgentsHandler.MountRoutes)
		r.Route("/products", params.CatalogHandler.MountProductRoutes)
		r.Route("/product-categories", params.CatalogHandler.MountCategoryRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/devices", params.DevicesHandler.MountRoutes)
		r.Route("/contracts", params.ContractsHandler.MountRoutes)
		r.Route("/sale", func(r chi.Router) {
			r.Route("/draft", params.SalesHandler.MountDraftRoutes)
			params.SalesHandler.MountSaleRoutes(r)
		})
		r.Route("/stats", params.StatsHandler.MountRoutes)
	})

	return r
}
