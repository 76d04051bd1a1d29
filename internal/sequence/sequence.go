// Package sequence issues the business numbers stamped onto documents.
// Numbers are generated once at creation and never change. Year-scoped
// counters live in the document_sequences table and are advanced with an
// upsert inside the caller's transaction, so two concurrent inserts
// serialize on the counter row instead of racing a COUNT query.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
)

// Document types tracked in document_sequences.
const (
	DocTypePurchaseOrder  = "PO"
	DocTypePaymentVoucher = "PV"
	DocTypePaymentReceipt = "PR"
)

// Generator allocates year-scoped sequence numbers.
type Generator struct {
	now func() time.Time
}

// NewGenerator constructs a Generator.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// WithNow overrides the clock, for tests.
func (g *Generator) WithNow(now func() time.Time) {
	if now != nil {
		g.now = now
	}
}

// Next advances and returns the counter for docType in the current year,
// using the supplied query surface (pool or open transaction).
func (g *Generator) Next(ctx context.Context, q db.DBTX, docType string) (int, int64, error) {
	year := g.now().Year()
	var seq int64
	err := q.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, year, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, year)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, docType, year).Scan(&seq)
	if err != nil {
		return 0, 0, fmt.Errorf("sequence: next %s: %w", docType, err)
	}
	return year, seq, nil
}

// PurchaseOrderNumber allocates and formats the next PO number.
func (g *Generator) PurchaseOrderNumber(ctx context.Context, q db.DBTX) (string, error) {
	year, seq, err := g.Next(ctx, q, DocTypePurchaseOrder)
	if err != nil {
		return "", err
	}
	return FormatPurchaseOrderNumber(year, seq), nil
}

// VoucherNumber allocates and formats the next vendor payment voucher number.
func (g *Generator) VoucherNumber(ctx context.Context, q db.DBTX) (string, error) {
	year, seq, err := g.Next(ctx, q, DocTypePaymentVoucher)
	if err != nil {
		return "", err
	}
	return FormatVoucherNumber(year, seq), nil
}

// ReceiptNumber allocates and formats the next customer payment receipt number.
func (g *Generator) ReceiptNumber(ctx context.Context, q db.DBTX) (string, error) {
	year, seq, err := g.Next(ctx, q, DocTypePaymentReceipt)
	if err != nil {
		return "", err
	}
	return FormatReceiptNumber(year, seq), nil
}

// QuotationNumber derives a quote number from the clock. The millisecond
// format is kept for compatibility with numbers already in circulation.
func (g *Generator) QuotationNumber() string {
	return fmt.Sprintf("QT-%d", g.now().UnixMilli())
}

// FormatPurchaseOrderNumber renders PO-{year}-{4-digit sequence}.
func FormatPurchaseOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("PO-%d-%04d", year, seq)
}

// FormatVoucherNumber renders PV-{year}-{5-digit sequence}.
func FormatVoucherNumber(year int, seq int64) string {
	return fmt.Sprintf("PV-%d-%05d", year, seq)
}

// FormatReceiptNumber renders PR-{year}-{5-digit sequence}.
func FormatReceiptNumber(year int, seq int64) string {
	return fmt.Sprintf("PR-%d-%05d", year, seq)
}
