package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/pricing"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// PurchaseOrderPort exposes the purchase order facts settlement needs
// and the PAID write-back performed when payments cover the total.
type PurchaseOrderPort interface {
	Details(ctx context.Context, id int64) (PurchaseOrderDoc, error)
	MarkPaid(ctx context.Context, q db.DBTX, id int64) error
}

type PurchaseOrderDoc struct {
	ID          int64
	Number      string
	VendorID    *int64
	TotalAmount float64
}

// SalesOrderPort mirrors PurchaseOrderPort on the customer side. The
// net total resolves through the order's own fallback chain.
type SalesOrderPort interface {
	Details(ctx context.Context, id int64) (SalesOrderDoc, error)
	NetTotal(ctx context.Context, q db.DBTX, id int64) (float64, error)
	MarkPaid(ctx context.Context, q db.DBTX, id int64) error
}

type SalesOrderDoc struct {
	ID         int64
	Number     string
	CustomerID int64
}

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service records payments, posts ledger entries and settles documents.
type Service struct {
	repo      RepositoryPort
	purchases PurchaseOrderPort
	sales     SalesOrderPort
	audit     AuditPort
}

func NewService(repo RepositoryPort, purchases PurchaseOrderPort, sales SalesOrderPort, audit AuditPort) *Service {
	return &Service{repo: repo, purchases: purchases, sales: sales, audit: audit}
}

type VendorPaymentInput struct {
	PurchaseOrderID int64
	Amount          float64
	Mode            string
	Reference       string
	CreatedBy       int64
	PaidAt          time.Time
}

type CustomerPaymentInput struct {
	SalesOrderID int64
	Amount       float64
	Mode         string
	Reference    string
	CreatedBy    int64
	ReceivedAt   time.Time
}

// RecordVendorPayment confirms an outgoing payment. The payment row,
// the voucher number, the ledger posting and the PAID flip when the
// order is fully covered all commit in one transaction.
func (s *Service) RecordVendorPayment(ctx context.Context, in VendorPaymentInput) (VendorPayment, error) {
	if in.Amount <= 0 {
		return VendorPayment{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	mode, err := paymentMode(in.Mode)
	if err != nil {
		return VendorPayment{}, err
	}
	po, err := s.purchases.Details(ctx, in.PurchaseOrderID)
	if err != nil {
		return VendorPayment{}, err
	}
	if po.VendorID == nil {
		return VendorPayment{}, fmt.Errorf("%w: purchase order %s has no vendor to pay", shared.ErrValidation, po.Number)
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	payment := VendorPayment{
		PurchaseOrderID: po.ID,
		VendorID:        *po.VendorID,
		Amount:          pricing.Round2(in.Amount),
		Reference:       paymentReference(in.Reference),
		Mode:            mode,
		Status:          PaymentConfirmed,
		CreatedBy:       in.CreatedBy,
		PaidAt:          paidAt,
	}
	net := pricing.Round2(po.TotalAmount)
	settled := false

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.GenerateVoucherNumber(ctx)
		if err != nil {
			return err
		}
		payment.VoucherNumber = number
		id, err := tx.InsertVendorPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id
		if err := tx.AppendLedgerEntry(ctx, LedgerEntry{
			PartyType:   PartyVendor,
			PartyID:     payment.VendorID,
			DocType:     "PAYMENT_VOUCHER",
			DocNumber:   number,
			EntryType:   EntryDebit,
			Amount:      payment.Amount,
			Description: fmt.Sprintf("payment against %s", po.Number),
		}); err != nil {
			return err
		}
		paid, err := tx.SumConfirmedVendorPayments(ctx, po.ID)
		if err != nil {
			return err
		}
		if net > 0 && pricing.Round2(paid) >= net {
			settled = true
			return s.purchases.MarkPaid(ctx, tx.Querier(), po.ID)
		}
		return nil
	})
	if err != nil {
		return VendorPayment{}, err
	}
	s.recordAudit(ctx, "VENDOR_PAYMENT", payment.CreatedBy, payment.ID, map[string]any{
		"voucher": payment.VoucherNumber, "po": po.Number, "mode": string(payment.Mode), "settled": settled,
	})
	return payment, nil
}

// RecordCustomerPayment confirms an incoming payment against a sales
// order, posting the receipt and the customer ledger credit together.
func (s *Service) RecordCustomerPayment(ctx context.Context, in CustomerPaymentInput) (CustomerPayment, error) {
	if in.Amount <= 0 {
		return CustomerPayment{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	mode, err := paymentMode(in.Mode)
	if err != nil {
		return CustomerPayment{}, err
	}
	so, err := s.sales.Details(ctx, in.SalesOrderID)
	if err != nil {
		return CustomerPayment{}, err
	}
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	payment := CustomerPayment{
		SalesOrderID: so.ID,
		CustomerID:   so.CustomerID,
		Amount:       pricing.Round2(in.Amount),
		Reference:    paymentReference(in.Reference),
		Mode:         mode,
		Status:       PaymentConfirmed,
		CreatedBy:    in.CreatedBy,
		ReceivedAt:   receivedAt,
	}
	settled := false

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.GenerateReceiptNumber(ctx)
		if err != nil {
			return err
		}
		payment.ReceiptNumber = number
		id, err := tx.InsertCustomerPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id
		if err := tx.AppendLedgerEntry(ctx, LedgerEntry{
			PartyType:   PartyCustomer,
			PartyID:     so.CustomerID,
			DocType:     "PAYMENT_RECEIPT",
			DocNumber:   number,
			EntryType:   EntryCredit,
			Amount:      payment.Amount,
			Description: fmt.Sprintf("payment against %s", so.Number),
		}); err != nil {
			return err
		}
		net, err := s.sales.NetTotal(ctx, tx.Querier(), so.ID)
		if err != nil {
			return err
		}
		net = pricing.Round2(net)
		received, err := tx.SumConfirmedCustomerPayments(ctx, so.ID)
		if err != nil {
			return err
		}
		if net > 0 && pricing.Round2(received) >= net {
			settled = true
			return s.sales.MarkPaid(ctx, tx.Querier(), so.ID)
		}
		return nil
	})
	if err != nil {
		return CustomerPayment{}, err
	}
	s.recordAudit(ctx, "CUSTOMER_PAYMENT", payment.CreatedBy, payment.ID, map[string]any{
		"receipt": payment.ReceiptNumber, "so": so.Number, "mode": string(payment.Mode), "settled": settled,
	})
	return payment, nil
}

// PostVendorInvoice credits the vendor subledger with the order total,
// establishing the liability the payments later settle.
func (s *Service) PostVendorInvoice(ctx context.Context, purchaseOrderID int64) error {
	po, err := s.purchases.Details(ctx, purchaseOrderID)
	if err != nil {
		return err
	}
	if po.VendorID == nil {
		return fmt.Errorf("%w: purchase order %s has no vendor", shared.ErrValidation, po.Number)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.AppendLedgerEntry(ctx, LedgerEntry{
			PartyType:   PartyVendor,
			PartyID:     *po.VendorID,
			DocType:     "PURCHASE_ORDER",
			DocNumber:   po.Number,
			EntryType:   EntryCredit,
			Amount:      pricing.Round2(po.TotalAmount),
			Description: fmt.Sprintf("invoice for %s", po.Number),
		})
	})
}

// PostCustomerInvoice debits the customer subledger with the order's
// net total.
func (s *Service) PostCustomerInvoice(ctx context.Context, salesOrderID int64) error {
	so, err := s.sales.Details(ctx, salesOrderID)
	if err != nil {
		return err
	}
	net, err := s.sales.NetTotal(ctx, nil, salesOrderID)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.AppendLedgerEntry(ctx, LedgerEntry{
			PartyType:   PartyCustomer,
			PartyID:     so.CustomerID,
			DocType:     "SALES_ORDER",
			DocNumber:   so.Number,
			EntryType:   EntryDebit,
			Amount:      pricing.Round2(net),
			Description: fmt.Sprintf("invoice for %s", so.Number),
		})
	})
}

// Outstanding projects the party balance from the ledger. Vendors carry
// credit balances, customers carry debit balances; both come back as
// positive amounts still owed.
func (s *Service) Outstanding(ctx context.Context, partyType PartyType, partyID int64) (float64, error) {
	debits, credits, err := s.repo.LedgerBalance(ctx, partyType, partyID)
	if err != nil {
		return 0, err
	}
	switch partyType {
	case PartyVendor:
		return pricing.Round2(credits - debits), nil
	case PartyCustomer:
		return pricing.Round2(debits - credits), nil
	default:
		return 0, fmt.Errorf("%w: unknown party type %q", shared.ErrValidation, partyType)
	}
}

// Ledger lists a party's postings in insertion order.
func (s *Service) Ledger(ctx context.Context, partyType PartyType, partyID int64) ([]LedgerEntry, error) {
	return s.repo.ListLedger(ctx, partyType, partyID)
}

// paymentReference keeps the caller's bank reference when given and
// generates one otherwise so every payment stays traceable.
func paymentReference(ref string) string {
	if trimmed := strings.TrimSpace(ref); trimmed != "" {
		return trimmed
	}
	return uuid.NewString()
}

// paymentMode validates the transfer mode, defaulting to BANK when the
// caller leaves it blank.
func paymentMode(mode string) (PaymentMode, error) {
	if strings.TrimSpace(mode) == "" {
		return ModeBank, nil
	}
	m := PaymentMode(strings.ToUpper(strings.TrimSpace(mode)))
	if _, ok := ValidPaymentModes[m]; !ok {
		return "", fmt.Errorf("%w: unknown payment mode %q", shared.ErrValidation, mode)
	}
	return m, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, actorID, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "settlement", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
