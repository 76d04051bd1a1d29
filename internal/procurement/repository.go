package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/sequence"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// RepositoryPort is the persistence surface the procurement service depends on.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	// Bind wraps an externally owned transaction scope so derivation can run
	// inside a caller's transaction without committing it.
	Bind(q db.DBTX) TxRepository
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	List(ctx context.Context, f ListFilters, p shared.Pagination) ([]PurchaseOrder, int64, error)
}

type TxRepository interface {
	Querier() db.DBTX
	GeneratePONumber(ctx context.Context) (string, error)
	Create(ctx context.Context, po PurchaseOrder) (int64, error)
	InsertItem(ctx context.Context, item PurchaseOrderItem) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateTotals(ctx context.Context, id int64, total float64) error
	SetApproval(ctx context.Context, id, approvedBy int64, at time.Time) error
	SetStoreAcceptance(ctx context.Context, id int64, status AcceptanceStatus) error
	AcceptAllLines(ctx context.Context, poID int64) error
	SetLineAccepted(ctx context.Context, poID, itemID int64, qty float64) error
	ExistsForQuotation(ctx context.Context, quotationID int64) (string, bool, error)
}

type Repository struct {
	pool *pgxpool.Pool
	seq  *sequence.Generator
}

func NewRepository(pool *pgxpool.Pool, seq *sequence.Generator) *Repository {
	return &Repository{pool: pool, seq: seq}
}

func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx, seq: r.seq})
	})
}

func (r *Repository) Bind(q db.DBTX) TxRepository {
	return &txRepo{q: q, seq: r.seq}
}

const poColumns = `id, po_number, quotation_id, material_request_id, sales_order_id, vendor_id,
	status, store_acceptance, total_amount, expected_delivery_date, approved_by, approved_at,
	created_at, updated_at`

func (r *Repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`, id)
	po, err := scanPO(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, fmt.Errorf("purchase order %d: %w", id, shared.ErrNotFound)
		}
		return PurchaseOrder{}, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	po.Items = items
	return po, nil
}

func (r *Repository) listItems(ctx context.Context, poID int64) ([]PurchaseOrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, purchase_order_id, item_code, description, material_type,
		quantity, design_quantity, accepted_quantity, unit, unit_rate, amount,
		cgst_percent, cgst_amount, sgst_percent, sgst_amount, total_amount, line_order
		FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY line_order, id`, poID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	var items []PurchaseOrderItem
	for rows.Next() {
		var it PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.ItemCode, &it.Description, &it.MaterialType,
			&it.Quantity, &it.DesignQuantity, &it.AcceptedQuantity, &it.Unit, &it.UnitRate, &it.Amount,
			&it.CGSTPercent, &it.CGSTAmount, &it.SGSTPercent, &it.SGSTAmount, &it.TotalAmount, &it.LineOrder); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) List(ctx context.Context, f ListFilters, p shared.Pagination) ([]PurchaseOrder, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.VendorID > 0 {
		args = append(args, f.VendorID)
		where = append(where, fmt.Sprintf("vendor_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("po_number ILIKE $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}

	args = append(args, p.PerPage, p.Offset())
	rows, err := r.pool.Query(ctx, `SELECT `+poColumns+` FROM purchase_orders`+clause+
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var out []PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase order: %w", err)
		}
		out = append(out, po)
	}
	return out, total, rows.Err()
}

func scanPO(row pgx.Row) (PurchaseOrder, error) {
	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.PONumber, &po.QuotationID, &po.MaterialRequestID, &po.SalesOrderID,
		&po.VendorID, &po.Status, &po.StoreAcceptance, &po.TotalAmount, &po.ExpectedDeliveryDate,
		&po.ApprovedBy, &po.ApprovedAt, &po.CreatedAt, &po.UpdatedAt)
	return po, err
}

type txRepo struct {
	q   db.DBTX
	seq *sequence.Generator
}

func (t *txRepo) Querier() db.DBTX { return t.q }

func (t *txRepo) GeneratePONumber(ctx context.Context) (string, error) {
	return t.seq.PurchaseOrderNumber(ctx, t.q)
}

func (t *txRepo) Create(ctx context.Context, po PurchaseOrder) (int64, error) {
	var id int64
	err := t.q.QueryRow(ctx, `INSERT INTO purchase_orders
		(po_number, quotation_id, material_request_id, sales_order_id, vendor_id,
		 status, store_acceptance, total_amount, expected_delivery_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now()) RETURNING id`,
		po.PONumber, po.QuotationID, po.MaterialRequestID, po.SalesOrderID, po.VendorID,
		string(po.Status), string(po.StoreAcceptance), po.TotalAmount, po.ExpectedDeliveryDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert purchase order: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertItem(ctx context.Context, it PurchaseOrderItem) error {
	_, err := t.q.Exec(ctx, `INSERT INTO purchase_order_items
		(purchase_order_id, item_code, description, material_type, quantity, design_quantity,
		 accepted_quantity, unit, unit_rate, amount, cgst_percent, cgst_amount,
		 sgst_percent, sgst_amount, total_amount, line_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		it.PurchaseOrderID, it.ItemCode, it.Description, it.MaterialType, it.Quantity, it.DesignQuantity,
		it.AcceptedQuantity, it.Unit, it.UnitRate, it.Amount, it.CGSTPercent, it.CGSTAmount,
		it.SGSTPercent, it.SGSTAmount, it.TotalAmount, it.LineOrder)
	if err != nil {
		return fmt.Errorf("insert purchase order item: %w", err)
	}
	return nil
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := t.q.Exec(ctx, `UPDATE purchase_orders SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (t *txRepo) UpdateTotals(ctx context.Context, id int64, total float64) error {
	_, err := t.q.Exec(ctx, `UPDATE purchase_orders SET total_amount = $1, updated_at = now() WHERE id = $2`, total, id)
	if err != nil {
		return fmt.Errorf("update purchase order totals: %w", err)
	}
	return nil
}

func (t *txRepo) SetApproval(ctx context.Context, id, approvedBy int64, at time.Time) error {
	_, err := t.q.Exec(ctx, `UPDATE purchase_orders SET approved_by = $1, approved_at = $2, updated_at = now() WHERE id = $3`,
		approvedBy, at, id)
	if err != nil {
		return fmt.Errorf("set purchase order approval: %w", err)
	}
	return nil
}

func (t *txRepo) SetStoreAcceptance(ctx context.Context, id int64, status AcceptanceStatus) error {
	tag, err := t.q.Exec(ctx, `UPDATE purchase_orders SET store_acceptance = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("set store acceptance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (t *txRepo) AcceptAllLines(ctx context.Context, poID int64) error {
	_, err := t.q.Exec(ctx, `UPDATE purchase_order_items SET accepted_quantity = quantity WHERE purchase_order_id = $1`, poID)
	if err != nil {
		return fmt.Errorf("accept purchase order lines: %w", err)
	}
	return nil
}

func (t *txRepo) SetLineAccepted(ctx context.Context, poID, itemID int64, qty float64) error {
	tag, err := t.q.Exec(ctx, `UPDATE purchase_order_items SET accepted_quantity = $1
		WHERE id = $2 AND purchase_order_id = $3`, qty, itemID, poID)
	if err != nil {
		return fmt.Errorf("set line accepted quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase order %d item %d: %w", poID, itemID, shared.ErrNotFound)
	}
	return nil
}

func (t *txRepo) ExistsForQuotation(ctx context.Context, quotationID int64) (string, bool, error) {
	var number string
	err := t.q.QueryRow(ctx, `SELECT po_number FROM purchase_orders WHERE quotation_id = $1 ORDER BY id LIMIT 1`,
		quotationID).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup purchase order by quotation: %w", err)
	}
	return number, true, nil
}
