package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/foundry-erp/foundry-erp/internal/jobs"
	"github.com/foundry-erp/foundry-erp/internal/quotation"
)

type sweepRepo struct {
	listErr error
}

func (r *sweepRepo) WithTx(ctx context.Context, fn func(context.Context, quotation.TxRepository) error) error {
	return errors.New("not expected in sweep tests")
}

func (r *sweepRepo) Get(ctx context.Context, id int64) (quotation.Quotation, []quotation.QuotationItem, error) {
	return quotation.Quotation{}, nil, errors.New("not expected in sweep tests")
}

func (r *sweepRepo) List(ctx context.Context, filters quotation.ListFilters, limit, offset int) ([]quotation.Quotation, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	return nil, 0, nil
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestExpirySweepRecordsFailureOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	service := quotation.NewService(&sweepRepo{listErr: errors.New("pg down")}, nil, nil, nil, nil, nil)
	job := NewQuotationExpiryJob(service, nil, metrics)

	task, err := NewQuotationExpiryTask(50)
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.Error(t, err)

	got := counterValue(t, registry, "foundry_jobs_failures_total", map[string]string{"job": TaskQuotationExpiry})
	require.Equal(t, float64(1), got)
	got = counterValue(t, registry, "foundry_jobs_total", map[string]string{"job": TaskQuotationExpiry, "status": "failure"})
	require.Equal(t, float64(1), got)
}

func TestExpirySweepRecordsSuccessOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	service := quotation.NewService(&sweepRepo{}, nil, nil, nil, nil, nil)
	job := NewQuotationExpiryJob(service, nil, metrics)

	task, err := NewQuotationExpiryTask(50)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	got := counterValue(t, registry, "foundry_jobs_total", map[string]string{"job": TaskQuotationExpiry, "status": "success"})
	require.Equal(t, float64(1), got)
	got = counterValue(t, registry, "foundry_jobs_failures_total", map[string]string{"job": TaskQuotationExpiry})
	require.Equal(t, float64(0), got)
}
