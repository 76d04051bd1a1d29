package salesorder

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// RepositoryPort describes sales order reads used by other modules.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (SalesOrder, error)
	ItemStatuses(ctx context.Context, salesOrderID int64) (map[string]string, error)
	NetTotal(ctx context.Context, q db.DBTX, id int64) (float64, error)
	UpdateStatus(ctx context.Context, q db.DBTX, id int64, status string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a sales order header.
func (r *Repository) Get(ctx context.Context, id int64) (SalesOrder, error) {
	var so SalesOrder
	err := r.pool.QueryRow(ctx, `
		SELECT id, number, customer_id, status, total_amount, created_at, updated_at
		FROM sales_orders WHERE id = $1
	`, id).Scan(&so.ID, &so.Number, &so.CustomerID, &so.Status, &so.TotalAmount, &so.CreatedAt, &so.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalesOrder{}, shared.ErrNotFound
		}
		return SalesOrder{}, err
	}
	return so, nil
}

// ItemStatuses maps item code to line status for one sales order.
func (r *Repository) ItemStatuses(ctx context.Context, salesOrderID int64) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT item_code, status FROM sales_order_items WHERE sales_order_id = $1
	`, salesOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make(map[string]string)
	for rows.Next() {
		var code, status string
		if err := rows.Scan(&code, &status); err != nil {
			return nil, err
		}
		statuses[code] = status
	}
	return statuses, rows.Err()
}

// NetTotal resolves the sales order's net value, preferring the stored
// header total and falling back to summing lines with tax.
func (r *Repository) NetTotal(ctx context.Context, q db.DBTX, id int64) (float64, error) {
	if q == nil {
		q = r.pool
	}
	var total float64
	err := q.QueryRow(ctx, `
		SELECT CASE
			WHEN total_amount > 0 THEN total_amount
			ELSE COALESCE((
				SELECT SUM(quantity * unit_rate + tax_amount)
				FROM sales_order_items WHERE sales_order_id = sales_orders.id
			), 0)
		END
		FROM sales_orders WHERE id = $1
	`, id).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return total, nil
}

// UpdateStatus writes the header status, inside the caller's transaction
// when q is an open tx.
func (r *Repository) UpdateStatus(ctx context.Context, q db.DBTX, id int64, status string) error {
	if q == nil {
		q = r.pool
	}
	tag, err := q.Exec(ctx, `UPDATE sales_orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
