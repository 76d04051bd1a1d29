package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/foundry-erp/foundry-erp/internal/catalog"
	"github.com/foundry-erp/foundry-erp/internal/materialrequest"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/pricing"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// QuotationReader exposes the quotation fields derivation needs, with
// sales order line statuses already joined in.
type QuotationReader interface {
	Details(ctx context.Context, id int64) (QuotationDetails, error)
}

type QuotationDetails struct {
	ID                int64
	VendorID          int64
	SalesOrderID      *int64
	MaterialRequestID *int64
	ValidUntil        time.Time
	GrandTotal        float64
	Items             []QuotationLine
}

type QuotationLine struct {
	ItemCode        string
	Description     string
	MaterialType    string
	Quantity        float64
	DesignQuantity  float64
	Unit            string
	UnitRate        float64
	CGSTPercent     float64
	SGSTPercent     float64
	SalesOrderState string
}

// ResolverPort resolves free-text material lines to catalog codes.
type ResolverPort interface {
	ResolveItemCode(ctx context.Context, ref *catalog.ItemRef) (string, error)
}

// NotifierPort dispatches document notifications after commit.
type NotifierPort interface {
	DocumentSent(ctx context.Context, docType, number string)
}

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MaterialRequestPort covers the material request reads and the status
// write-back performed on approval.
type MaterialRequestPort interface {
	Get(ctx context.Context, id int64) (materialrequest.MaterialRequest, error)
	UpdateStatus(ctx context.Context, q db.DBTX, id int64, status string) error
}

// Service derives purchase orders and drives their lifecycle.
type Service struct {
	repo       RepositoryPort
	quotations QuotationReader
	materials  MaterialRequestPort
	rates      []RateSource
	resolver   ResolverPort
	notifier   NotifierPort
	audit      AuditPort
}

func NewService(repo RepositoryPort, quotations QuotationReader, materials MaterialRequestPort,
	rates []RateSource, resolver ResolverPort, notifier NotifierPort, audit AuditPort) *Service {
	return &Service{
		repo:       repo,
		quotations: quotations,
		materials:  materials,
		rates:      rates,
		resolver:   resolver,
		notifier:   notifier,
		audit:      audit,
	}
}

// CreatePurchaseOrder derives a purchase order from exactly one source:
// a quotation, a material request, or a manual vendor+items payload.
// When scope is non-nil the writes join the caller's transaction and the
// caller owns commit and rollback; otherwise the service opens its own.
func (s *Service) CreatePurchaseOrder(ctx context.Context, src Source, scope db.DBTX) (PurchaseOrder, error) {
	if err := validateSource(src); err != nil {
		return PurchaseOrder{}, err
	}

	var (
		po       PurchaseOrder
		estimate float64
		err      error
	)
	switch {
	case src.QuotationID > 0:
		po, estimate, err = s.fromQuotation(ctx, src)
	case src.MaterialRequestID > 0:
		po, estimate, err = s.fromMaterialRequest(ctx, src)
	default:
		po, estimate, err = s.fromManual(ctx, src)
	}
	if err != nil {
		return PurchaseOrder{}, err
	}

	persist := func(ctx context.Context, tx TxRepository) error {
		number, err := tx.GeneratePONumber(ctx)
		if err != nil {
			return err
		}
		po.PONumber = number
		po.TotalAmount = estimate
		id, err := tx.Create(ctx, po)
		if err != nil {
			return err
		}
		po.ID = id
		actual := 0.0
		for i := range po.Items {
			po.Items[i].PurchaseOrderID = id
			if err := tx.InsertItem(ctx, po.Items[i]); err != nil {
				return err
			}
			actual += po.Items[i].TotalAmount
		}
		actual = pricing.Round2(actual)
		if actual != estimate {
			if err := tx.UpdateTotals(ctx, id, actual); err != nil {
				return err
			}
			po.TotalAmount = actual
		}
		return nil
	}

	if scope != nil {
		err = persist(ctx, s.repo.Bind(scope))
	} else {
		err = s.repo.WithTx(ctx, persist)
	}
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PO_CREATE", po.ID, map[string]any{"number": po.PONumber, "status": po.Status})
	return po, nil
}

// ExistsForQuotation reports the first purchase order derived from a
// quotation, running on the caller's query surface.
func (s *Service) ExistsForQuotation(ctx context.Context, q db.DBTX, quotationID int64) (string, bool, error) {
	return s.repo.Bind(q).ExistsForQuotation(ctx, quotationID)
}

// CreateFromQuotation derives a purchase order inside the caller's
// transaction. Used by the quotation REVIEWED transition.
func (s *Service) CreateFromQuotation(ctx context.Context, q db.DBTX, quotationID int64) (int64, string, error) {
	po, err := s.CreatePurchaseOrder(ctx, Source{QuotationID: quotationID}, q)
	if err != nil {
		return 0, "", err
	}
	return po.ID, po.PONumber, nil
}

func (s *Service) fromQuotation(ctx context.Context, src Source) (PurchaseOrder, float64, error) {
	q, err := s.quotations.Details(ctx, src.QuotationID)
	if err != nil {
		return PurchaseOrder{}, 0, err
	}
	po := PurchaseOrder{
		QuotationID:     &q.ID,
		SalesOrderID:    q.SalesOrderID,
		VendorID:        optionalID(q.VendorID),
		Status:          StatusDraft,
		StoreAcceptance: AcceptancePending,
	}
	if po.VendorID == nil {
		po.Status = StatusPORequest
	}
	po.ExpectedDeliveryDate = src.ExpectedDelivery
	if po.ExpectedDeliveryDate == nil && !q.ValidUntil.IsZero() {
		d := q.ValidUntil
		po.ExpectedDeliveryDate = &d
	}
	for _, line := range q.Items {
		// Lines the customer rejected on the sales order never reach the vendor.
		if line.SalesOrderState == "Rejected" {
			continue
		}
		item, err := s.buildLine(ctx, ManualLine{
			ItemCode:       line.ItemCode,
			Description:    line.Description,
			MaterialType:   line.MaterialType,
			Quantity:       line.Quantity,
			DesignQuantity: line.DesignQuantity,
			Unit:           line.Unit,
			UnitRate:       line.UnitRate,
			CGSTPercent:    &line.CGSTPercent,
			SGSTPercent:    &line.SGSTPercent,
		}, len(po.Items)+1)
		if err != nil {
			return PurchaseOrder{}, 0, err
		}
		po.Items = append(po.Items, item)
	}
	if len(po.Items) == 0 {
		return PurchaseOrder{}, 0, fmt.Errorf("%w: quotation %d has no orderable lines", shared.ErrValidation, q.ID)
	}
	return po, pricing.Round2(q.GrandTotal), nil
}

func (s *Service) fromMaterialRequest(ctx context.Context, src Source) (PurchaseOrder, float64, error) {
	mr, err := s.materials.Get(ctx, src.MaterialRequestID)
	if err != nil {
		return PurchaseOrder{}, 0, err
	}
	rate, err := s.resolveRate(ctx, mr)
	if err != nil {
		return PurchaseOrder{}, 0, err
	}
	po := PurchaseOrder{
		MaterialRequestID:    &mr.ID,
		SalesOrderID:         mr.SalesOrderID,
		VendorID:             mr.VendorID,
		Status:               StatusDraft,
		StoreAcceptance:      AcceptancePending,
		ExpectedDeliveryDate: src.ExpectedDelivery,
	}
	if po.VendorID == nil {
		po.Status = StatusPORequest
	}
	item, err := s.buildLine(ctx, ManualLine{
		ItemCode:     mr.ItemCode,
		MaterialName: mr.MaterialName,
		MaterialType: mr.MaterialType,
		Quantity:     mr.Quantity,
		Unit:         mr.Unit,
		UnitRate:     rate,
	}, 1)
	if err != nil {
		return PurchaseOrder{}, 0, err
	}
	po.Items = append(po.Items, item)
	return po, pricing.Round2(mr.Quantity * rate), nil
}

func (s *Service) fromManual(ctx context.Context, src Source) (PurchaseOrder, float64, error) {
	po := PurchaseOrder{
		VendorID:             &src.VendorID,
		Status:               StatusDraft,
		StoreAcceptance:      AcceptancePending,
		ExpectedDeliveryDate: src.ExpectedDelivery,
	}
	for i, line := range src.Items {
		item, err := s.buildLine(ctx, line, i+1)
		if err != nil {
			return PurchaseOrder{}, 0, err
		}
		po.Items = append(po.Items, item)
	}
	return po, 0, nil
}

func (s *Service) buildLine(ctx context.Context, line ManualLine, order int) (PurchaseOrderItem, error) {
	if line.Quantity < 0 || line.UnitRate < 0 {
		return PurchaseOrderItem{}, fmt.Errorf("%w: quantity and rate must not be negative", shared.ErrValidation)
	}
	ref := catalog.ItemRef{Code: line.ItemCode, MaterialName: line.MaterialName, MaterialType: line.MaterialType}
	code, err := s.resolver.ResolveItemCode(ctx, &ref)
	if err != nil {
		return PurchaseOrderItem{}, err
	}
	if code == "" {
		return PurchaseOrderItem{}, fmt.Errorf("%w: line %d could not be resolved: name or code required", shared.ErrValidation, order)
	}
	priced := pricing.PriceLine(line.Quantity, line.UnitRate, taxPercent(line.CGSTPercent), taxPercent(line.SGSTPercent))
	return PurchaseOrderItem{
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
		LineOrder:      order,
	}, nil
}

// resolveRate walks the configured rate chain and takes the first
// positive rate. Chain errors abort derivation.
func (s *Service) resolveRate(ctx context.Context, mr materialrequest.MaterialRequest) (float64, error) {
	for _, src := range s.rates {
		rate, err := src.Rate(ctx, mr)
		if err != nil {
			return 0, fmt.Errorf("rate source %s: %w", src.Name(), err)
		}
		if rate > 0 {
			return rate, nil
		}
	}
	return 0, nil
}

// SetStatus applies a caller-requested status. FULFILLED marks every
// line fully accepted; RECEIVED and PARTIALLY_RECEIVED accept the
// caller's per-line quantities when supplied.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status, edits []LineEdit) (Status, error) {
	if !ValidStatuses[status] {
		return "", fmt.Errorf("%w: invalid purchase order status %q", shared.ErrValidation, status)
	}
	po, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		if status == StatusFulfilled {
			return tx.AcceptAllLines(ctx, id)
		}
		if status == StatusReceived || status == StatusPartiallyReceived {
			for _, e := range edits {
				if err := tx.SetLineAccepted(ctx, id, e.ItemID, e.AcceptedQuantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if status == StatusSent && s.notifier != nil {
		s.notifier.DocumentSent(ctx, "PURCHASE_ORDER", po.PONumber)
	}
	s.recordAudit(ctx, "PO_STATUS", id, map[string]any{"number": po.PONumber, "status": status})
	return status, nil
}

// Approve moves a purchase order to APPROVED. Orders without a vendor
// cannot be approved; an order from a material request flips the
// request to PO_CREATED in the same transaction.
func (s *Service) Approve(ctx context.Context, id, approvedBy int64) error {
	po, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if po.VendorID == nil {
		return fmt.Errorf("%w: cannot approve purchase order %s without vendor", shared.ErrValidation, po.PONumber)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateStatus(ctx, id, StatusApproved); err != nil {
			return err
		}
		if err := tx.SetApproval(ctx, id, approvedBy, time.Now().UTC()); err != nil {
			return err
		}
		if po.MaterialRequestID != nil {
			return s.materials.UpdateStatus(ctx, tx.Querier(), *po.MaterialRequestID, materialrequest.StatusPOCreated)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PO_APPROVE", id, map[string]any{"approved_by": approvedBy})
	return nil
}

// SetStoreAcceptance records the receiving store's verdict. ACCEPTED
// with no per-line quantities accepts every line in full.
func (s *Service) SetStoreAcceptance(ctx context.Context, id int64, status AcceptanceStatus, edits []LineEdit) error {
	if !validAcceptance[status] {
		return fmt.Errorf("%w: invalid store acceptance %q", shared.ErrValidation, status)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.SetStoreAcceptance(ctx, id, status); err != nil {
			return err
		}
		if status != AcceptanceAccepted {
			return nil
		}
		if len(edits) == 0 {
			return tx.AcceptAllLines(ctx, id)
		}
		for _, e := range edits {
			if err := tx.SetLineAccepted(ctx, id, e.ItemID, e.AcceptedQuantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PO_STORE_ACCEPTANCE", id, map[string]any{"status": status})
	return nil
}

// MarkPaid flips a purchase order to PAID on the caller's transaction.
// Called by settlement when confirmed payments cover the order total.
func (s *Service) MarkPaid(ctx context.Context, q db.DBTX, id int64) error {
	return s.repo.Bind(q).UpdateStatus(ctx, id, StatusPaid)
}

// Get returns a purchase order with items.
func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns purchase orders matching filters.
func (s *Service) List(ctx context.Context, f ListFilters, p shared.Pagination) ([]PurchaseOrder, int64, error) {
	return s.repo.List(ctx, f, p)
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "purchase_order", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}

func validateSource(src Source) error {
	count := 0
	if src.QuotationID > 0 {
		count++
	}
	if src.MaterialRequestID > 0 {
		count++
	}
	manual := src.VendorID > 0 || len(src.Items) > 0
	if manual {
		count++
	}
	if count != 1 {
		return fmt.Errorf("%w: exactly one of quotation, material request or manual vendor+items is required", shared.ErrValidation)
	}
	if manual {
		if src.VendorID <= 0 {
			return fmt.Errorf("%w: vendor is required for a manual purchase order", shared.ErrValidation)
		}
		if len(src.Items) == 0 {
			return fmt.Errorf("%w: at least one item is required for a manual purchase order", shared.ErrValidation)
		}
	}
	return nil
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
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
