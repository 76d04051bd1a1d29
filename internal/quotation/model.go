package quotation

import "time"

// Status enumerates quotation lifecycle values.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusEmailReceived Status = "EMAIL_RECEIVED"
	StatusReceived      Status = "RECEIVED"
	StatusReviewed      Status = "REVIEWED"
	StatusClosed        Status = "CLOSED"
	StatusPending       Status = "PENDING"
)

// ValidStatuses is the fixed allow-list for SetStatus. Anything else is
// rejected before any write.
var ValidStatuses = map[Status]bool{
	StatusDraft:         true,
	StatusSent:          true,
	StatusEmailReceived: true,
	StatusReceived:      true,
	StatusReviewed:      true,
	StatusClosed:        true,
	StatusPending:       true,
}

// Quotation is a vendor-facing request-for-price document.
type Quotation struct {
	ID                int64
	QuoteNumber       string
	VendorID          int64
	SalesOrderID      *int64
	MaterialRequestID *int64
	Status            Status
	ValidUntil        time.Time
	TotalAmount       float64
	TaxAmount         float64
	GrandTotal        float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// QuotationItem is one priced line of a quotation.
type QuotationItem struct {
	ID             int64
	QuotationID    int64
	ItemCode       string
	Description    string
	MaterialType   string
	Quantity       float64
	DesignQuantity float64
	Unit           string
	UnitRate       float64
	Amount         float64
	CGSTPercent    float64
	CGSTAmount     float64
	SGSTPercent    float64
	SGSTAmount     float64
	TotalAmount    float64
	LineOrder      int
}

// ListFilters narrows quotation listings.
type ListFilters struct {
	Status   string
	VendorID int64
	Search   string
}
