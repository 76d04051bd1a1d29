package materialrequest

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// RepositoryPort describes material request access used by procurement.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (MaterialRequest, error)
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

// Get fetches one material request.
func (r *Repository) Get(ctx context.Context, id int64) (MaterialRequest, error) {
	var mr MaterialRequest
	err := r.pool.QueryRow(ctx, `
		SELECT id, number, item_code, material_name, material_type, quantity, unit,
			unit_rate, vendor_id, sales_order_id, bom_id, plan_id, status, created_at, updated_at
		FROM material_requests WHERE id = $1
	`, id).Scan(&mr.ID, &mr.Number, &mr.ItemCode, &mr.MaterialName, &mr.MaterialType,
		&mr.Quantity, &mr.Unit, &mr.UnitRate, &mr.VendorID, &mr.SalesOrderID,
		&mr.BOMID, &mr.PlanID, &mr.Status, &mr.CreatedAt, &mr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MaterialRequest{}, shared.ErrNotFound
		}
		return MaterialRequest{}, err
	}
	return mr, nil
}

// UpdateStatus writes the request status, inside the caller's transaction
// when q is an open tx.
func (r *Repository) UpdateStatus(ctx context.Context, q db.DBTX, id int64, status string) error {
	if q == nil {
		q = r.pool
	}
	tag, err := q.Exec(ctx, `UPDATE material_requests SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
