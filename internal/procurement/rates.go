package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/materialrequest"
)

// RateSource supplies a candidate unit rate for a material request line.
// A zero rate means the source has nothing to offer and the chain moves on.
type RateSource interface {
	Name() string
	Rate(ctx context.Context, mr materialrequest.MaterialRequest) (float64, error)
}

// DefaultRateChain is the lookup order used when a purchase order is derived
// from a material request that carries no usable rate of its own.
func DefaultRateChain(pool *pgxpool.Pool) []RateSource {
	return []RateSource{
		&bomCostSource{pool: pool},
		&planRateSource{pool: pool},
		&historicalRateSource{pool: pool},
		&stockValuationSource{pool: pool},
		requestRateSource{},
	}
}

type bomCostSource struct{ pool *pgxpool.Pool }

func (s *bomCostSource) Name() string { return "bom_cost" }

func (s *bomCostSource) Rate(ctx context.Context, mr materialrequest.MaterialRequest) (float64, error) {
	if mr.BOMID == nil {
		return 0, nil
	}
	var rate float64
	err := s.pool.QueryRow(ctx, `SELECT cost FROM bom_items WHERE bom_id = $1 AND item_code = $2 LIMIT 1`,
		*mr.BOMID, mr.ItemCode).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("bom cost lookup: %w", err)
	}
	return rate, nil
}

type planRateSource struct{ pool *pgxpool.Pool }

func (s *planRateSource) Name() string { return "plan_rate" }

func (s *planRateSource) Rate(ctx context.Context, mr materialrequest.MaterialRequest) (float64, error) {
	if mr.PlanID == nil {
		return 0, nil
	}
	var rate float64
	err := s.pool.QueryRow(ctx, `SELECT rate FROM plan_rates WHERE plan_id = $1 AND item_code = $2 LIMIT 1`,
		*mr.PlanID, mr.ItemCode).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("plan rate lookup: %w", err)
	}
	return rate, nil
}

// historicalRateSource reuses the rate from the most recent purchase order
// line for the same item.
type historicalRateSource struct{ pool *pgxpool.Pool }

func (s *historicalRateSource) Name() string { return "historical_po" }

func (s *historicalRateSource) Rate(ctx context.Context, mr materialrequest.MaterialRequest) (float64, error) {
	var rate float64
	err := s.pool.QueryRow(ctx, `SELECT unit_rate FROM purchase_order_items
		WHERE item_code = $1 AND unit_rate > 0 ORDER BY id DESC LIMIT 1`, mr.ItemCode).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("historical rate lookup: %w", err)
	}
	return rate, nil
}

type stockValuationSource struct{ pool *pgxpool.Pool }

func (s *stockValuationSource) Name() string { return "stock_valuation" }

func (s *stockValuationSource) Rate(ctx context.Context, mr materialrequest.MaterialRequest) (float64, error) {
	var rate float64
	err := s.pool.QueryRow(ctx, `SELECT valuation_rate FROM stock_items WHERE item_code = $1 LIMIT 1`,
		mr.ItemCode).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stock valuation lookup: %w", err)
	}
	return rate, nil
}

type requestRateSource struct{}

func (requestRateSource) Name() string { return "request_rate" }

func (requestRateSource) Rate(_ context.Context, mr materialrequest.MaterialRequest) (float64, error) {
	return mr.UnitRate, nil
}
