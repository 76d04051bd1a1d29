package salesorder

import "time"

// Header statuses written by settlement when payments cover the order.
const (
	StatusOpen = "OPEN"
	StatusPaid = "PAID"
)

// Item statuses carried on sales order lines. Rejected lines are excluded
// when a purchase order is derived from a quotation.
const (
	ItemStatusPending  = "Pending"
	ItemStatusAccepted = "Accepted"
	ItemStatusRejected = "Rejected"
)

// SalesOrder is the customer-side demand document linked from quotations
// and purchase orders.
type SalesOrder struct {
	ID          int64
	Number      string
	CustomerID  int64
	Status      string
	TotalAmount float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SalesOrderItem is one line of a sales order.
type SalesOrderItem struct {
	ID           int64
	SalesOrderID int64
	ItemCode     string
	Description  string
	Quantity     float64
	Unit         string
	UnitRate     float64
	TaxAmount    float64
	Status       string
}
