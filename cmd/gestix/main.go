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
	"github.com/joho/godotenv"

	"github.com/gestix-erp/gestix/internal/app"
	"github.com/gestix-erp/gestix/internal/catalog"
	"github.com/gestix-erp/gestix/internal/company"
	"github.com/gestix-erp/gestix/internal/customers"
	"github.com/gestix-erp/gestix/internal/finance"
	"github.com/gestix-erp/gestix/internal/fulfillment"
	"github.com/gestix-erp/gestix/internal/inventory"
	"github.com/gestix-erp/gestix/internal/observability"
	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/platform/cache"
	"github.com/gestix-erp/gestix/internal/platform/db"
	"github.com/gestix-erp/gestix/internal/platform/httpx"
	"github.com/gestix-erp/gestix/internal/production"
	"github.com/gestix-erp/gestix/internal/sales"
	"github.com/gestix-erp/gestix/internal/shared"
	"github.com/gestix-erp/gestix/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.MigrationsURL, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, summaries uncached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	perms := httpx.PermissionMiddleware{Resolve: shared.HeaderRoleResolver(nil), Logger: logger}

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	companyRepo := company.NewRepository(pool)
	companyHandler := company.NewHandler(logger, companyRepo, perms)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService, perms)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryHandler := inventory.NewHandler(logger, inventoryRepo, perms)

	salesRepo := sales.NewRepository(pool)
	salesHandler := sales.NewHandler(logger, salesRepo, perms)

	ordersRepo := orders.NewRepository(pool)
	ordersHandler := orders.NewHandler(logger, ordersRepo, perms)

	productionRepo := production.NewRepository(pool)
	productionHandler := production.NewHandler(logger, productionRepo, perms)

	fulfillmentStore := fulfillment.NewPGStore(pool)
	fulfillmentService := fulfillment.NewService(fulfillmentStore, auditLogger, idempotencyStore, catalogService, logger)
	fulfillmentHandler := fulfillment.NewHandler(logger, fulfillmentService, perms, jobClient)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo, salesRepo)
	customersHandler := customers.NewHandler(logger, customersService, perms)

	financeRepo := finance.NewRepository(pool)
	financeCache := finance.NewCache(redisClient, cfg.SummaryCacheTTL)
	financeService := finance.NewService(financeRepo, financeCache, logger)
	financeHandler := finance.NewHandler(logger, financeService, perms)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		CompanyHandler:     companyHandler,
		CatalogHandler:     catalogHandler,
		CustomersHandler:   customersHandler,
		FinanceHandler:     financeHandler,
		FulfillmentHandler: fulfillmentHandler,
		InventoryHandler:   inventoryHandler,
		SalesHandler:       salesHandler,
		OrdersHandler:      ordersHandler,
		ProductionHandler:  productionHandler,
		Metrics:            metrics,
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
