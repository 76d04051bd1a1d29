package quotation

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/foundry-erp/foundry-erp/internal/platform/httpx"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// Handler manages quotation endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers quotation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotations", h.list)
	r.Get("/quotations/{id}", h.show)
	r.Post("/quotations", h.create)
	r.Post("/quotations/{id}/status", h.setStatus)
	r.Put("/quotations/{id}/items", h.replaceItems)
	r.Delete("/quotations/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 25
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	vendorID, _ := strconv.ParseInt(r.URL.Query().Get("vendor_id"), 10, 64)
	filters := ListFilters{
		Status:   r.URL.Query().Get("status"),
		VendorID: vendorID,
		Search:   r.URL.Query().Get("search"),
	}
	list, total, err := h.service.List(r.Context(), filters, limit, offset)
	if err != nil {
		h.logger.Error("list quotations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotations": list, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	q, items, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotation": q, "items": items})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	input := CreateInput{
		VendorID:          req.VendorID,
		SalesOrderID:      req.SalesOrderID,
		MaterialRequestID: req.MaterialRequestID,
		ValidUntil:        req.ValidUntil,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, LineInput{
			ItemCode:       item.ItemCode,
			MaterialName:   item.MaterialName,
			MaterialType:   item.MaterialType,
			Description:    item.Description,
			Quantity:       item.Quantity,
			DesignQuantity: item.DesignQuantity,
			Unit:           item.Unit,
			UnitRate:       item.UnitRate,
			CGSTPercent:    item.CGSTPercent,
			SGSTPercent:    item.SGSTPercent,
		})
	}
	q, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create quotation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, QuotationResponse{
		ID: q.ID, QuoteNumber: q.QuoteNumber, Status: q.Status,
		TotalAmount: q.TotalAmount, TaxAmount: q.TaxAmount, GrandTotal: q.GrandTotal,
		ValidUntil: q.ValidUntil,
	})
}

func (h *Handler) replaceItems(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req ReplaceItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	var lines []LineInput
	for _, item := range req.Items {
		lines = append(lines, LineInput{
			ItemCode:       item.ItemCode,
			MaterialName:   item.MaterialName,
			MaterialType:   item.MaterialType,
			Description:    item.Description,
			Quantity:       item.Quantity,
			DesignQuantity: item.DesignQuantity,
			Unit:           item.Unit,
			UnitRate:       item.UnitRate,
			CGSTPercent:    item.CGSTPercent,
			SGSTPercent:    item.SGSTPercent,
		})
	}
	q, _, err := h.service.ReplaceItems(r.Context(), id, lines)
	if err != nil {
		h.logger.Error("replace quotation items", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, QuotationResponse{
		ID: q.ID, QuoteNumber: q.QuoteNumber, Status: q.Status,
		TotalAmount: q.TotalAmount, TaxAmount: q.TaxAmount, GrandTotal: q.GrandTotal,
		ValidUntil: q.ValidUntil,
	})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req SetStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	status, err := h.service.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		h.logger.Error("set quotation status", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete quotation", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
