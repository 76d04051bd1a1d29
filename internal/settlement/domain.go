package settlement

import "time"

// PaymentStatus is the lifecycle of a recorded payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentMode is how the money moved.
type PaymentMode string

const (
	ModeCash PaymentMode = "CASH"
	ModeBank PaymentMode = "BANK"
	ModeUPI  PaymentMode = "UPI"
)

// ValidPaymentModes is the allow-list checked before any write.
var ValidPaymentModes = map[PaymentMode]struct{}{
	ModeCash: {},
	ModeBank: {},
	ModeUPI:  {},
}

// EntryType is the ledger posting direction.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// PartyType distinguishes the two ledger subledgers.
type PartyType string

const (
	PartyVendor   PartyType = "VENDOR"
	PartyCustomer PartyType = "CUSTOMER"
)

// VendorPayment is an outgoing payment against a purchase order,
// voucher-numbered at confirmation.
type VendorPayment struct {
	ID              int64
	VoucherNumber   string
	PurchaseOrderID int64
	VendorID        int64
	Amount          float64
	// Reference is the bank or UTR reference for the transfer.
	// Generated when the caller does not supply one.
	Reference string
	Mode      PaymentMode
	Status    PaymentStatus
	CreatedBy int64
	PaidAt    time.Time
	CreatedAt time.Time
}

// CustomerPayment is an incoming payment against a sales order,
// receipt-numbered at confirmation.
type CustomerPayment struct {
	ID            int64
	ReceiptNumber string
	SalesOrderID  int64
	CustomerID    int64
	Amount        float64
	Reference     string
	Mode          PaymentMode
	Status        PaymentStatus
	CreatedBy     int64
	ReceivedAt    time.Time
	CreatedAt     time.Time
}

// LedgerEntry is one append-only posting. Entries are never updated or
// deleted; corrections are posted as offsetting entries.
type LedgerEntry struct {
	ID          int64
	PartyType   PartyType
	PartyID     int64
	DocType     string
	DocNumber   string
	EntryType   EntryType
	Amount      float64
	Description string
	CreatedAt   time.Time
}
