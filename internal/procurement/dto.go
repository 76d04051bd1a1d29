package procurement

import "time"

type CreatePORequest struct {
	QuotationID       int64           `json:"quotation_id,omitempty" validate:"omitempty,gt=0"`
	MaterialRequestID int64           `json:"material_request_id,omitempty" validate:"omitempty,gt=0"`
	VendorID          int64           `json:"vendor_id,omitempty" validate:"omitempty,gt=0"`
	ExpectedDelivery  *time.Time      `json:"expected_delivery,omitempty"`
	Items             []CreateLineReq `json:"items,omitempty" validate:"omitempty,dive"`
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

type SetStatusRequest struct {
	Status    string        `json:"status" validate:"required"`
	LineEdits []LineEditReq `json:"line_edits,omitempty" validate:"omitempty,dive"`
}

type LineEditReq struct {
	ItemID           int64   `json:"item_id" validate:"required,gt=0"`
	AcceptedQuantity float64 `json:"accepted_quantity" validate:"gte=0"`
}

type ApproveRequest struct {
	ApprovedBy int64 `json:"approved_by" validate:"required,gt=0"`
}

type StoreAcceptanceRequest struct {
	Status    string        `json:"status" validate:"required"`
	LineEdits []LineEditReq `json:"line_edits,omitempty" validate:"omitempty,dive"`
}

type PurchaseOrderResponse struct {
	ID          int64   `json:"id"`
	PONumber    string  `json:"po_number"`
	Status      Status  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	VendorID    *int64  `json:"vendor_id,omitempty"`
}
