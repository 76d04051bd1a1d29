package procurement

import "time"

// Status is a purchase order lifecycle status.
type Status string

const (
	StatusPORequest         Status = "PO_REQUEST"
	StatusDraft             Status = "DRAFT"
	StatusOrdered           Status = "ORDERED"
	StatusSent              Status = "SENT"
	StatusAcknowledged      Status = "ACKNOWLEDGED"
	StatusReceived          Status = "RECEIVED"
	StatusPartiallyReceived Status = "PARTIALLY_RECEIVED"
	StatusApproved          Status = "APPROVED"
	StatusPendingPayment    Status = "PENDING_PAYMENT"
	StatusPaid              Status = "PAID"
	StatusCompleted         Status = "COMPLETED"
	StatusClosed            Status = "CLOSED"
	StatusFulfilled         Status = "FULFILLED"
)

// ValidStatuses is the allow-list used when callers push a status change.
// Ordering between statuses is not enforced here.
var ValidStatuses = map[Status]bool{
	StatusPORequest:         true,
	StatusDraft:             true,
	StatusOrdered:           true,
	StatusSent:              true,
	StatusAcknowledged:      true,
	StatusReceived:          true,
	StatusPartiallyReceived: true,
	StatusApproved:          true,
	StatusPendingPayment:    true,
	StatusPaid:              true,
	StatusCompleted:         true,
	StatusClosed:            true,
	StatusFulfilled:         true,
}

// AcceptanceStatus tracks the receiving store's verdict on a delivered order.
type AcceptanceStatus string

const (
	AcceptancePending  AcceptanceStatus = "PENDING"
	AcceptanceAccepted AcceptanceStatus = "ACCEPTED"
	AcceptanceRejected AcceptanceStatus = "REJECTED"
)

var validAcceptance = map[AcceptanceStatus]bool{
	AcceptancePending:  true,
	AcceptanceAccepted: true,
	AcceptanceRejected: true,
}

type PurchaseOrder struct {
	ID                    int64
	PONumber              string
	QuotationID           *int64
	MaterialRequestID     *int64
	SalesOrderID          *int64
	VendorID              *int64
	Status                Status
	StoreAcceptance       AcceptanceStatus
	TotalAmount           float64
	ExpectedDeliveryDate  *time.Time
	ApprovedBy            *int64
	ApprovedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Items                 []PurchaseOrderItem
}

type PurchaseOrderItem struct {
	ID               int64
	PurchaseOrderID  int64
	ItemCode         string
	Description      string
	MaterialType     string
	Quantity         float64
	DesignQuantity   float64
	AcceptedQuantity float64
	Unit             string
	UnitRate         float64
	Amount           float64
	CGSTPercent      float64
	CGSTAmount       float64
	SGSTPercent      float64
	SGSTAmount       float64
	TotalAmount      float64
	LineOrder        int
}

// Source selects exactly one derivation input for a new purchase order.
type Source struct {
	QuotationID       int64
	MaterialRequestID int64
	VendorID          int64
	Items             []ManualLine
	ExpectedDelivery  *time.Time
}

type ManualLine struct {
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

// LineEdit carries a per-line accepted quantity supplied alongside a
// status change or a store acceptance.
type LineEdit struct {
	ItemID           int64
	AcceptedQuantity float64
}

type ListFilters struct {
	Status   Status
	VendorID int64
	Search   string
}
