package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/foundry-erp/foundry-erp/internal/jobs"
	"github.com/foundry-erp/foundry-erp/internal/quotation"
)

const (
	// TaskQuotationExpiry sweeps SENT quotations past their validity date.
	TaskQuotationExpiry = "quotation:expiry"
)

// QuotationExpiryPayload limits the sweep batch size.
type QuotationExpiryPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewQuotationExpiryTask builds a sweep task.
func NewQuotationExpiryTask(batchSize int) (*asynq.Task, error) {
	body, err := json.Marshal(QuotationExpiryPayload{BatchSize: batchSize})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotationExpiry, body, asynq.Queue(QueueDefault)), nil
}

// QuotationExpiryJob flips stale SENT quotations to PENDING so the
// procurement team re-engages the vendor.
type QuotationExpiryJob struct {
	Service *quotation.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewQuotationExpiryJob initialises the sweep handler.
func NewQuotationExpiryJob(service *quotation.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *QuotationExpiryJob {
	return &QuotationExpiryJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one sweep.
func (j *QuotationExpiryJob) Handle(ctx context.Context, t *asynq.Task) (retErr error) {
	if j == nil || j.Service == nil {
		return errors.New("quotation expiry: handler not configured")
	}
	var payload QuotationExpiryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.BatchSize <= 0 {
		payload.BatchSize = 200
	}

	tracker := j.metrics().Track(TaskQuotationExpiry)
	defer func() {
		retErr = tracker.End(retErr)
	}()

	now := j.now()
	list, _, err := j.Service.List(ctx, quotation.ListFilters{Status: string(quotation.StatusSent)}, payload.BatchSize, 0)
	if err != nil {
		j.logger().Error("quotation expiry listing failed", slog.Any("error", err))
		return err
	}

	expired := 0
	for _, q := range list {
		if !q.ValidUntil.Before(now) {
			continue
		}
		if err := j.Service.MarkExpired(ctx, q.ID, now); err != nil {
			j.logger().Warn("quotation expiry skip",
				slog.Int64("quotation_id", q.ID), slog.Any("error", err))
			continue
		}
		expired++
	}
	j.metrics().AddExpiredQuotations(expired)
	j.logger().Info("quotation expiry sweep completed",
		slog.Int("scanned", len(list)), slog.Int("expired", expired))
	return nil
}

func (j *QuotationExpiryJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *QuotationExpiryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *QuotationExpiryJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
