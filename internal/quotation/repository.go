package quotation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Quotation, []QuotationItem, error)
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]Quotation, int, error)
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	Querier() db.DBTX
	Create(ctx context.Context, q Quotation) (int64, error)
	InsertItem(ctx context.Context, item QuotationItem) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateTotals(ctx context.Context, id int64, total, tax, grand float64) error
	DeleteItems(ctx context.Context, quotationID int64) error
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	q db.DBTX
}

// WithTx wraps fn in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

const quotationColumns = `id, quote_number, vendor_id, sales_order_id, material_request_id,
	status, valid_until, total_amount, tax_amount, grand_total, created_at, updated_at`

// Get returns a quotation header and its ordered items.
func (r *Repository) Get(ctx context.Context, id int64) (Quotation, []QuotationItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, nil, shared.ErrNotFound
		}
		return Quotation{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, quotation_id, item_code, description, material_type, quantity,
			design_quantity, unit, unit_rate, amount, cgst_percent, cgst_amount,
			sgst_percent, sgst_amount, total_amount, line_order
		FROM quotation_items WHERE quotation_id = $1 ORDER BY line_order, id
	`, id)
	if err != nil {
		return Quotation{}, nil, err
	}
	defer rows.Close()

	var items []QuotationItem
	for rows.Next() {
		var item QuotationItem
		if err := rows.Scan(&item.ID, &item.QuotationID, &item.ItemCode, &item.Description,
			&item.MaterialType, &item.Quantity, &item.DesignQuantity, &item.Unit,
			&item.UnitRate, &item.Amount, &item.CGSTPercent, &item.CGSTAmount,
			&item.SGSTPercent, &item.SGSTAmount, &item.TotalAmount, &item.LineOrder); err != nil {
			return Quotation{}, nil, err
		}
		items = append(items, item)
	}
	return q, items, rows.Err()
}

// List returns quotations matching filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Quotation, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filters.VendorID > 0 {
		args = append(args, filters.VendorID)
		where += fmt.Sprintf(` AND vendor_id = $%d`, len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += fmt.Sprintf(` AND quote_number ILIKE $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `SELECT `+quotationColumns+` FROM quotations`+where+
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, q)
	}
	return list, total, rows.Err()
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	err := row.Scan(&q.ID, &q.QuoteNumber, &q.VendorID, &q.SalesOrderID, &q.MaterialRequestID,
		&q.Status, &q.ValidUntil, &q.TotalAmount, &q.TaxAmount, &q.GrandTotal,
		&q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (tx *txRepo) Querier() db.DBTX {
	return tx.q
}

func (tx *txRepo) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := tx.q.QueryRow(ctx, `
		INSERT INTO quotations (quote_number, vendor_id, sales_order_id, material_request_id,
			status, valid_until, total_amount, tax_amount, grand_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`, q.QuoteNumber, q.VendorID, q.SalesOrderID, q.MaterialRequestID,
		q.Status, q.ValidUntil, q.TotalAmount, q.TaxAmount, q.GrandTotal).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertItem(ctx context.Context, item QuotationItem) error {
	_, err := tx.q.Exec(ctx, `
		INSERT INTO quotation_items (quotation_id, item_code, description, material_type,
			quantity, design_quantity, unit, unit_rate, amount, cgst_percent, cgst_amount,
			sgst_percent, sgst_amount, total_amount, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, item.QuotationID, item.ItemCode, item.Description, item.MaterialType,
		item.Quantity, item.DesignQuantity, item.Unit, item.UnitRate, item.Amount,
		item.CGSTPercent, item.CGSTAmount, item.SGSTPercent, item.SGSTAmount,
		item.TotalAmount, item.LineOrder)
	return err
}

func (tx *txRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := tx.q.Exec(ctx, `UPDATE quotations SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (tx *txRepo) UpdateTotals(ctx context.Context, id int64, total, tax, grand float64) error {
	_, err := tx.q.Exec(ctx, `
		UPDATE quotations SET total_amount = $1, tax_amount = $2, grand_total = $3, updated_at = NOW()
		WHERE id = $4
	`, total, tax, grand, id)
	return err
}

func (tx *txRepo) DeleteItems(ctx context.Context, quotationID int64) error {
	_, err := tx.q.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, quotationID)
	return err
}

func (tx *txRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tx.q.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
