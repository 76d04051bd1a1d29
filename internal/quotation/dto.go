package quotation

import "time"

type CreateQuotationRequest struct {
	VendorID          int64            `json:"vendor_id" validate:"required,gt=0"`
	SalesOrderID      *int64           `json:"sales_order_id,omitempty" validate:"omitempty,gt=0"`
	MaterialRequestID *int64           `json:"material_request_id,omitempty" validate:"omitempty,gt=0"`
	ValidUntil        time.Time        `json:"valid_until" validate:"required"`
	Items             []CreateLineReq  `json:"items" validate:"required,min=1,dive"`
}

type CreateLineReq struct {
	ItemCode       string   `json:"item_code"`
	MaterialName   string   `json:"material_name"`
	MaterialType   string   `json:"material_type"`
	Description    string   `json:"description"`
	Quantity       float64  `json:"quantity" validate:"required,gt=0"`
	DesignQuantity float64  `json:"design_quantity" validate:"gte=0"`
	Unit           string   `json:"unit" validate:"max=20"`
	UnitRate       float64  `json:"unit_rate" validate:"gte=0"`
	CGSTPercent    *float64 `json:"cgst_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	SGSTPercent    *float64 `json:"sgst_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type ReplaceItemsRequest struct {
	Items []CreateLineReq `json:"items" validate:"required,min=1,dive"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type QuotationResponse struct {
	ID          int64     `json:"id"`
	QuoteNumber string    `json:"quote_number"`
	Status      Status    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	TaxAmount   float64   `json:"tax_amount"`
	GrandTotal  float64   `json:"grand_total"`
	ValidUntil  time.Time `json:"valid_until"`
}
