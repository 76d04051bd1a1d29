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

	"github.com/foundry-erp/foundry-erp/internal/app"
	"github.com/foundry-erp/foundry-erp/internal/catalog"
	"github.com/foundry-erp/foundry-erp/internal/materialrequest"
	"github.com/foundry-erp/foundry-erp/internal/notify"
	"github.com/foundry-erp/foundry-erp/internal/observability"
	"github.com/foundry-erp/foundry-erp/internal/platform/cache"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/pricing"
	"github.com/foundry-erp/foundry-erp/internal/procurement"
	"github.com/foundry-erp/foundry-erp/internal/quotation"
	"github.com/foundry-erp/foundry-erp/internal/salesorder"
	"github.com/foundry-erp/foundry-erp/internal/sequence"
	"github.com/foundry-erp/foundry-erp/internal/settlement"
	"github.com/foundry-erp/foundry-erp/internal/shared"
	"github.com/foundry-erp/foundry-erp/jobs"
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
	if cfg.DefaultGSTPercent > 0 {
		pricing.DefaultGSTPercent = cfg.DefaultGSTPercent
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	seq := sequence.NewGenerator()

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	notifier := notify.NewDispatcher(queueClient, logger)

	catalogRepo := catalog.NewCachedRepository(catalog.NewRepository(dbpool), redisClient, 10*time.Minute)
	resolver := catalog.NewResolver(catalogRepo)
	salesRepo := salesorder.NewRepository(dbpool)
	materialRepo := materialrequest.NewRepository(dbpool)

	quotationRepo := quotation.NewRepository(dbpool)
	procurementRepo := procurement.NewRepository(dbpool, seq)
	quotationSource := procurement.NewQuotationAdapter(quotationRepo, salesRepo)
	procurementService := procurement.NewService(
		procurementRepo,
		quotationSource,
		materialRepo,
		procurement.DefaultRateChain(dbpool),
		resolver,
		notifier,
		auditLogger,
	)
	quotationService := quotation.NewService(quotationRepo, procurementService, resolver, seq, notifier, auditLogger)

	settlementRepo := settlement.NewRepository(dbpool, seq)
	settlementService := settlement.NewService(
		settlementRepo,
		settlement.NewProcurementAdapter(procurementService),
		settlement.NewSalesOrderAdapter(salesRepo),
		auditLogger,
	)

	metrics := observability.NewMetrics()

	quotationHandler := quotation.NewHandler(logger, quotationService)
	procurementHandler := procurement.NewHandler(logger, procurementService)
	settlementHandler := settlement.NewHandler(logger, settlementService)

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
		QuotationHandler:   quotationHandler,
		ProcurementHandler: procurementHandler,
		SettlementHandler:  settlementHandler,
		JobHandler:         jobHandler,
		Pool:               dbpool,
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
