package quotation

import (
	"context"
	"fmt"
	"time"

	"github.com/foundry-erp/foundry-erp/internal/catalog"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/pricing"
	"github.com/foundry-erp/foundry-erp/internal/sequence"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// PurchaseOrderPort is implemented by the procurement service. Both
// methods run on the supplied query surface so the REVIEWED transition
// and the derived purchase order commit or roll back together.
type PurchaseOrderPort interface {
	ExistsForQuotation(ctx context.Context, q db.DBTX, quotationID int64) (string, bool, error)
	CreateFromQuotation(ctx context.Context, q db.DBTX, quotationID int64) (int64, string, error)
}

// ResolverPort resolves free-text material lines to catalog codes.
type ResolverPort interface {
	ResolveItemCode(ctx context.Context, ref *catalog.ItemRef) (string, error)
}

// NotifierPort dispatches document notifications after commit.
type NotifierPort interface {
	DocumentSent(ctx context.Context, docType, number string)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the quotation lifecycle.
type Service struct {
	repo     RepositoryPort
	pos      PurchaseOrderPort
	resolver ResolverPort
	seq      *sequence.Generator
	notifier NotifierPort
	audit    AuditPort
}

// NewService constructs the quotation service.
func NewService(repo RepositoryPort, pos PurchaseOrderPort, resolver ResolverPort, seq *sequence.Generator, notifier NotifierPort, audit AuditPort) *Service {
	if seq == nil {
		seq = sequence.NewGenerator()
	}
	return &Service{repo: repo, pos: pos, resolver: resolver, seq: seq, notifier: notifier, audit: audit}
}

// CreateInput describes a new quotation.
type CreateInput struct {
	VendorID          int64
	SalesOrderID      *int64
	MaterialRequestID *int64
	ValidUntil        time.Time
	Items             []LineInput
}

// LineInput describes one requested line. Nil tax percents take the
// policy default.
type LineInput struct {
	ItemCode       string
	MaterialName   string
	MaterialType   string
	Description    string
	Quantity       float64
	DesignQuantity float64
	Unit           string
	UnitRate       float64
	CGSTPercent    *float64
	SGSTPercent    *float64
}

// Create resolves, prices and persists a quotation with its items.
func (s *Service) Create(ctx context.Context, input CreateInput) (Quotation, error) {
	if input.VendorID == 0 {
		return Quotation{}, fmt.Errorf("%w: vendor is required", shared.ErrValidation)
	}
	if len(input.Items) == 0 {
		return Quotation{}, fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}

	items, totals, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return Quotation{}, err
	}

	q := Quotation{
		QuoteNumber:       s.seq.QuotationNumber(),
		VendorID:          input.VendorID,
		SalesOrderID:      input.SalesOrderID,
		MaterialRequestID: input.MaterialRequestID,
		Status:            StatusDraft,
		ValidUntil:        input.ValidUntil,
		TotalAmount:       totals.TotalAmount,
		TaxAmount:         totals.TaxAmount,
		GrandTotal:        totals.GrandTotal,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.Create(ctx, q)
		if err != nil {
			return err
		}
		q.ID = id
		for i := range items {
			items[i].QuotationID = id
			if err := tx.InsertItem(ctx, items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Quotation{}, err
	}
	s.recordAudit(ctx, "QUOTATION_CREATE", q.ID, map[string]any{"number": q.QuoteNumber})
	return q, nil
}

// SetStatus applies a lifecycle transition. REVIEWED derives a purchase
// order inside the same transaction when none references the quotation
// yet; the in-transaction existence check keeps retried requests from
// creating a second one. SENT notifies the vendor after commit.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (Status, error) {
	if !ValidStatuses[status] {
		return "", fmt.Errorf("%w: invalid quotation status %q", shared.ErrValidation, status)
	}
	q, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		if status == StatusReviewed {
			_, exists, err := s.pos.ExistsForQuotation(ctx, tx.Querier(), id)
			if err != nil {
				return err
			}
			if !exists {
				if _, _, err := s.pos.CreateFromQuotation(ctx, tx.Querier(), id); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	// Dispatch happens outside the transaction: a notification failure
	// must never roll back the status write.
	if status == StatusSent && s.notifier != nil {
		s.notifier.DocumentSent(ctx, "QUOTATION", q.QuoteNumber)
	}
	s.recordAudit(ctx, "QUOTATION_STATUS", id, map[string]any{"number": q.QuoteNumber, "status": status})
	return status, nil
}

// ReplaceItems swaps a quotation's lines for a repriced set and corrects
// the header totals in the same transaction, so the document totals
// always equal the sum of the line totals. Quotations already REVIEWED
// or CLOSED are frozen; their derived purchase order carries the figures.
func (s *Service) ReplaceItems(ctx context.Context, id int64, inputs []LineInput) (Quotation, []QuotationItem, error) {
	if len(inputs) == 0 {
		return Quotation{}, nil, fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	q, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return Quotation{}, nil, err
	}
	if q.Status == StatusReviewed || q.Status == StatusClosed {
		return Quotation{}, nil, fmt.Errorf("%w: quotation %s is %s and can no longer be edited", shared.ErrConflict, q.QuoteNumber, q.Status)
	}

	items, totals, err := s.buildItems(ctx, inputs)
	if err != nil {
		return Quotation{}, nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteItems(ctx, id); err != nil {
			return err
		}
		for i := range items {
			items[i].QuotationID = id
			if err := tx.InsertItem(ctx, items[i]); err != nil {
				return err
			}
		}
		return tx.UpdateTotals(ctx, id, totals.TotalAmount, totals.TaxAmount, totals.GrandTotal)
	})
	if err != nil {
		return Quotation{}, nil, err
	}

	q.TotalAmount = totals.TotalAmount
	q.TaxAmount = totals.TaxAmount
	q.GrandTotal = totals.GrandTotal
	s.recordAudit(ctx, "QUOTATION_ITEMS", id, map[string]any{"number": q.QuoteNumber, "lines": len(items)})
	return q, items, nil
}

// Delete removes a quotation unless a purchase order references it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	q, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		poNumber, exists, err := s.pos.ExistsForQuotation(ctx, tx.Querier(), id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: quotation %s is referenced by purchase order %s", shared.ErrConflict, q.QuoteNumber, poNumber)
		}
		if err := tx.DeleteItems(ctx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "QUOTATION_DELETE", id, map[string]any{"number": q.QuoteNumber})
	return nil
}

// Get returns a quotation with items.
func (s *Service) Get(ctx context.Context, id int64) (Quotation, []QuotationItem, error) {
	return s.repo.Get(ctx, id)
}

// List returns quotations matching filters.
func (s *Service) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Quotation, int, error) {
	return s.repo.List(ctx, filters, limit, offset)
}

// MarkExpired flips a SENT quotation past its validity date to PENDING.
// Used by the background sweep.
func (s *Service) MarkExpired(ctx context.Context, id int64, asOf time.Time) error {
	q, _, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if q.Status != StatusSent || !q.ValidUntil.Before(asOf) {
		return nil
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusPending)
	})
}

func (s *Service) buildItems(ctx context.Context, inputs []LineInput) ([]QuotationItem, pricing.DocumentTotals, error) {
	var items []QuotationItem
	var amounts []pricing.LineAmounts
	for i, line := range inputs {
		if line.Quantity < 0 || line.UnitRate < 0 {
			return nil, pricing.DocumentTotals{}, fmt.Errorf("%w: quantity and rate must not be negative", shared.ErrValidation)
		}
		ref := catalog.ItemRef{Code: line.ItemCode, MaterialName: line.MaterialName, MaterialType: line.MaterialType}
		code, err := s.resolver.ResolveItemCode(ctx, &ref)
		if err != nil {
			return nil, pricing.DocumentTotals{}, err
		}
		if code == "" {
			return nil, pricing.DocumentTotals{}, fmt.Errorf("%w: item %d could not be resolved: name or code required", shared.ErrValidation, i+1)
		}
		priced := pricing.PriceLine(line.Quantity, line.UnitRate, taxPercent(line.CGSTPercent), taxPercent(line.SGSTPercent))
		amounts = append(amounts, priced)
		items = append(items, QuotationItem{
			ItemCode:       code,
			Description:    line.Description,
			MaterialType:   ref.MaterialType,
			Quantity:       line.Quantity,
			DesignQuantity: line.DesignQuantity,
			Unit:           line.Unit,
			UnitRate:       line.UnitRate,
			Amount:         priced.Amount,
			CGSTPercent:    percentValue(line.CGSTPercent),
			CGSTAmount:     priced.CGSTAmount,
			SGSTPercent:    percentValue(line.SGSTPercent),
			SGSTAmount:     priced.SGSTAmount,
			TotalAmount:    priced.Total,
			LineOrder:      i + 1,
		})
	}
	return items, pricing.SumLines(amounts), nil
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "quotation", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}

func taxPercent(p *float64) float64 {
	if p == nil {
		return -1
	}
	return *p
}

func percentValue(p *float64) float64 {
	if p == nil {
		return pricing.DefaultGSTPercent
	}
	return *p
}
