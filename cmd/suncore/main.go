package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/suncore-erp/suncore/internal/agents"
	"github.com/suncore-erp/suncore/internal/app"
	"github.com/suncore-erp/suncore/internal/auth"
	"github.com/suncore-erp/suncore/internal/catalog"
	"github.com/suncore-erp/suncore/internal/contracts"
	"github.com/suncore-erp/suncore/internal/customers"
	"github.com/suncore-erp/suncore/internal/devices"
	"github.com/suncore-erp/suncore/internal/inventory"
	"github.com/suncore-erp/suncore/internal/platform/cache"
	"github.com/suncore-erp/suncore/internal/platform/db"
	"github.com/suncore-erp/suncore/internal/rbac"
	"github.com/suncore-erp/suncore/internal/roles"
	"github.com/suncore-erp/suncore/internal/sales"
	"github.com/suncore-erp/suncore/internal/shared"
	"github.com/suncore-erp/suncore/internal/stats"
	"github.com/suncore-erp/suncore/internal/users"
	"github.com/suncore-erp/suncore/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "suncore_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	rbacService := rbac.NewService(pool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, rbacMiddleware)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, rbacService, rbacMiddleware)

	authService := auth.NewService(usersRepo)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService, rbacMiddleware)

	agentsRepo := agents.NewRepository(pool)
	agentsService := agents.NewService(agentsRepo)
	agentsHandler := agents.NewHandler(logger, agentsService, rbacMiddleware)

	catalogRepo := catalog.NewRepository(pool)
	catalogHandler := catalog.NewHandler(logger, catalogRepo, rbacMiddleware)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, idempotencyStore, inventory.ServiceConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rbacMiddleware)

	devicesRepo := devices.NewRepository(pool)
	tokenGenerator := devices.NewTokenGenerator(cfg.DeviceTokenSecret)
	devicesService := devices.NewService(devicesRepo, tokenGenerator, auditLogger)
	devicesHandler := devices.NewHandler(logger, devicesService, rbacMiddleware)

	contractsRepo := contracts.NewRepository(pool)
	contractsService := contracts.NewService(contractsRepo, auditLogger, logger)
	contractsHandler := contracts.NewHandler(logger, contractsService, rbacMiddleware)

	draftManager := sales.NewDraftManager()
	salesRepo := sales.NewRepository(pool, devicesRepo, contractsRepo)
	salesService := sales.NewService(draftManager, salesRepo, catalogRepo, devicesService, inventoryService, auditLogger, logger)
	salesHandler := sales.NewHandler(logger, salesService, rbacMiddleware)

	authHandler := auth.NewHandler(logger, authService, sessionManager, usersService, draftManager.Drop)

	statsService := stats.NewService(stats.NewSQLSource(pool), redisClient, cfg.StatsCacheTTL)
	statsHandler := stats.NewHandler(logger, statsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		CustomersHandler:   customersHandler,
		AgentsHandler:      agentsHandler,
		CatalogHandler:     catalogHandler,
		InventoryHandler:   inventoryHandler,
		DevicesHandler:     devicesHandler,
		ContractsHandler:   contractsHandler,
		SalesHandler:       salesHandler,
		StatsHandler:       statsHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
