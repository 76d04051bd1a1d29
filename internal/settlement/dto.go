package settlement

import "time"

type VendorPaymentRequest struct {
	PurchaseOrderID int64      `json:"purchase_order_id" validate:"required,gt=0"`
	Amount          float64    `json:"amount" validate:"required,gt=0"`
	Mode            string     `json:"mode,omitempty" validate:"omitempty,oneof=CASH BANK UPI"`
	Reference       string     `json:"reference,omitempty" validate:"omitempty,max=64"`
	CreatedBy       int64      `json:"created_by" validate:"required,gt=0"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

type CustomerPaymentRequest struct {
	SalesOrderID int64      `json:"sales_order_id" validate:"required,gt=0"`
	Amount       float64    `json:"amount" validate:"required,gt=0"`
	Mode         string     `json:"mode,omitempty" validate:"omitempty,oneof=CASH BANK UPI"`
	Reference    string     `json:"reference,omitempty" validate:"omitempty,max=64"`
	CreatedBy    int64      `json:"created_by" validate:"required,gt=0"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
}

type VendorPaymentResponse struct {
	ID            int64         `json:"id"`
	VoucherNumber string        `json:"voucher_number"`
	Amount        float64       `json:"amount"`
	Reference     string        `json:"reference"`
	Mode          PaymentMode   `json:"mode"`
	Status        PaymentStatus `json:"status"`
}

type CustomerPaymentResponse struct {
	ID            int64         `json:"id"`
	ReceiptNumber string        `json:"receipt_number"`
	Amount        float64       `json:"amount"`
	Reference     string        `json:"reference"`
	Mode          PaymentMode   `json:"mode"`
	Status        PaymentStatus `json:"status"`
}
