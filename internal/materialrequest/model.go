package materialrequest

import "time"

// Material request lifecycle statuses.
const (
	StatusPending   = "PENDING"
	StatusPOCreated = "PO_CREATED"
	StatusClosed    = "CLOSED"
)

// MaterialRequest is an internal demand signal that can originate a
// purchase order without a prior quotation.
type MaterialRequest struct {
	ID           int64
	Number       string
	ItemCode     string
	MaterialName string
	MaterialType string
	Quantity     float64
	Unit         string
	UnitRate     float64
	VendorID     *int64
	SalesOrderID *int64
	BOMID        *int64
	PlanID       *int64
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
