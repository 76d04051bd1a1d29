package settlement

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/sequence"
)

// RepositoryPort is the persistence surface the settlement service uses.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	LedgerBalance(ctx context.Context, partyType PartyType, partyID int64) (debits, credits float64, err error)
	ListLedger(ctx context.Context, partyType PartyType, partyID int64) ([]LedgerEntry, error)
}

type TxRepository interface {
	Querier() db.DBTX
	GenerateVoucherNumber(ctx context.Context) (string, error)
	GenerateReceiptNumber(ctx context.Context) (string, error)
	InsertVendorPayment(ctx context.Context, p VendorPayment) (int64, error)
	InsertCustomerPayment(ctx context.Context, p CustomerPayment) (int64, error)
	AppendLedgerEntry(ctx context.Context, e LedgerEntry) error
	SumConfirmedVendorPayments(ctx context.Context, purchaseOrderID int64) (float64, error)
	SumConfirmedCustomerPayments(ctx context.Context, salesOrderID int64) (float64, error)
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

// LedgerBalance sums postings per direction. The caller applies the
// party sign convention.
func (r *Repository) LedgerBalance(ctx context.Context, partyType PartyType, partyID int64) (float64, float64, error) {
	var debits, credits float64
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'CREDIT'), 0)
		FROM ledger_entries WHERE party_type = $1 AND party_id = $2
	`, string(partyType), partyID).Scan(&debits, &credits)
	if err != nil {
		return 0, 0, fmt.Errorf("ledger balance: %w", err)
	}
	return debits, credits, nil
}

func (r *Repository) ListLedger(ctx context.Context, partyType PartyType, partyID int64) ([]LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, party_type, party_id, doc_type, doc_number, entry_type, amount, description, created_at
		FROM ledger_entries WHERE party_type = $1 AND party_id = $2 ORDER BY id
	`, string(partyType), partyID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.PartyType, &e.PartyID, &e.DocType, &e.DocNumber,
			&e.EntryType, &e.Amount, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type txRepo struct {
	q   db.DBTX
	seq *sequence.Generator
}

func (t *txRepo) Querier() db.DBTX { return t.q }

func (t *txRepo) GenerateVoucherNumber(ctx context.Context) (string, error) {
	return t.seq.VoucherNumber(ctx, t.q)
}

func (t *txRepo) GenerateReceiptNumber(ctx context.Context) (string, error) {
	return t.seq.ReceiptNumber(ctx, t.q)
}

func (t *txRepo) InsertVendorPayment(ctx context.Context, p VendorPayment) (int64, error) {
	var id int64
	err := t.q.QueryRow(ctx, `INSERT INTO vendor_payments
		(voucher_number, purchase_order_id, vendor_id, amount, reference, mode, status, created_by, paid_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now()) RETURNING id`,
		p.VoucherNumber, p.PurchaseOrderID, p.VendorID, p.Amount, p.Reference, string(p.Mode), string(p.Status), p.CreatedBy, p.PaidAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert vendor payment: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertCustomerPayment(ctx context.Context, p CustomerPayment) (int64, error) {
	var id int64
	err := t.q.QueryRow(ctx, `INSERT INTO customer_payments
		(receipt_number, sales_order_id, customer_id, amount, reference, mode, status, created_by, received_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now()) RETURNING id`,
		p.ReceiptNumber, p.SalesOrderID, p.CustomerID, p.Amount, p.Reference, string(p.Mode), string(p.Status), p.CreatedBy, p.ReceivedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert customer payment: %w", err)
	}
	return id, nil
}

// AppendLedgerEntry only ever inserts. There is no update or delete
// statement against ledger_entries anywhere in this package.
func (t *txRepo) AppendLedgerEntry(ctx context.Context, e LedgerEntry) error {
	_, err := t.q.Exec(ctx, `INSERT INTO ledger_entries
		(party_type, party_id, doc_type, doc_number, entry_type, amount, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())`,
		string(e.PartyType), e.PartyID, e.DocType, e.DocNumber, string(e.EntryType), e.Amount, e.Description)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (t *txRepo) SumConfirmedVendorPayments(ctx context.Context, purchaseOrderID int64) (float64, error) {
	var sum float64
	err := t.q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM vendor_payments
		WHERE purchase_order_id = $1 AND status = 'CONFIRMED'`, purchaseOrderID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum vendor payments: %w", err)
	}
	return sum, nil
}

func (t *txRepo) SumConfirmedCustomerPayments(ctx context.Context, salesOrderID int64) (float64, error) {
	var sum float64
	err := t.q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM customer_payments
		WHERE sales_order_id = $1 AND status = 'CONFIRMED'`, salesOrderID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum customer payments: %w", err)
	}
	return sum, nil
}
