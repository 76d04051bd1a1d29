package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/foundry-erp/foundry-erp/internal/app"
	"github.com/foundry-erp/foundry-erp/internal/catalog"
	jobmetrics "github.com/foundry-erp/foundry-erp/internal/jobs"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/quotation"
	"github.com/foundry-erp/foundry-erp/internal/sequence"
	"github.com/foundry-erp/foundry-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	seq := sequence.NewGenerator()

	// The sweep only reads and flips quotations, so the worker wires the
	// quotation service without the purchase order and notification ports.
	catalogRepo := catalog.NewRepository(pool)
	resolver := catalog.NewResolver(catalogRepo)
	quotationRepo := quotation.NewRepository(pool)
	quotationService := quotation.NewService(quotationRepo, nil, resolver, seq, nil, nil)

	expiryJob := jobs.NewQuotationExpiryJob(quotationService, logger, metrics)

	expiryTask, err := jobs.NewQuotationExpiryTask(200)
	if err != nil {
		logger.Error("build expiry task", slog.Any("error", err))
		os.Exit(1)
	}

	mailer := &jobs.DocumentMailer{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		From:   cfg.SMTPFrom,
		To:     cfg.SMTPTo,
		Logger: logger,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskQuotationExpiry, Handler: expiryJob.Handle},
			{Type: jobs.TaskTypeSendDocument, Handler: mailer.HandleSendDocument},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.QuotationExpiryCron, Task: expiryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
