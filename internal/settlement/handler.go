package settlement

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/foundry-erp/foundry-erp/internal/platform/httpx"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// Handler manages payment and ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers settlement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/payments/vendor", h.vendorPayment)
	r.Post("/payments/customer", h.customerPayment)
	r.Get("/ledger/{partyType}/{partyID}", h.ledger)
	r.Get("/ledger/{partyType}/{partyID}/outstanding", h.outstanding)
}

func (h *Handler) vendorPayment(w http.ResponseWriter, r *http.Request) {
	var req VendorPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	in := VendorPaymentInput{PurchaseOrderID: req.PurchaseOrderID, Amount: req.Amount, Mode: req.Mode, Reference: req.Reference, CreatedBy: req.CreatedBy}
	if req.PaidAt != nil {
		in.PaidAt = *req.PaidAt
	}
	p, err := h.service.RecordVendorPayment(r.Context(), in)
	if err != nil {
		h.logger.Error("record vendor payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, VendorPaymentResponse{
		ID: p.ID, VoucherNumber: p.VoucherNumber, Amount: p.Amount, Reference: p.Reference, Mode: p.Mode, Status: p.Status,
	})
}

func (h *Handler) customerPayment(w http.ResponseWriter, r *http.Request) {
	var req CustomerPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	in := CustomerPaymentInput{SalesOrderID: req.SalesOrderID, Amount: req.Amount, Mode: req.Mode, Reference: req.Reference, CreatedBy: req.CreatedBy}
	if req.ReceivedAt != nil {
		in.ReceivedAt = *req.ReceivedAt
	}
	p, err := h.service.RecordCustomerPayment(r.Context(), in)
	if err != nil {
		h.logger.Error("record customer payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CustomerPaymentResponse{
		ID: p.ID, ReceiptNumber: p.ReceiptNumber, Amount: p.Amount, Reference: p.Reference, Mode: p.Mode, Status: p.Status,
	})
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	partyType, partyID, err := parseParty(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.Ledger(r.Context(), partyType, partyID)
	if err != nil {
		h.logger.Error("list ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	partyType, partyID, err := parseParty(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	amount, err := h.service.Outstanding(r.Context(), partyType, partyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"party_id": partyID, "outstanding": amount})
}

func parseParty(r *http.Request) (PartyType, int64, error) {
	partyType := PartyType(strings.ToUpper(chi.URLParam(r, "partyType")))
	if partyType != PartyVendor && partyType != PartyCustomer {
		return "", 0, fmt.Errorf("%w: party type must be vendor or customer", shared.ErrValidation)
	}
	partyID, err := strconv.ParseInt(chi.URLParam(r, "partyID"), 10, 64)
	if err != nil || partyID <= 0 {
		return "", 0, fmt.Errorf("%w: invalid party id", shared.ErrValidation)
	}
	return partyType, partyID, nil
}
