package procurement

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

// Handler manages purchase order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers purchase order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/purchase-orders", h.list)
	r.Get("/purchase-orders/{id}", h.show)
	r.Post("/purchase-orders", h.create)
	r.Post("/purchase-orders/{id}/status", h.setStatus)
	r.Post("/purchase-orders/{id}/approve", h.approve)
	r.Post("/purchase-orders/{id}/store-acceptance", h.storeAcceptance)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := shared.ParsePagination(r)
	vendorID, _ := strconv.ParseInt(r.URL.Query().Get("vendor_id"), 10, 64)
	f := ListFilters{
		Status:   Status(r.URL.Query().Get("status")),
		VendorID: vendorID,
		Search:   r.URL.Query().Get("search"),
	}
	list, total, err := h.service.List(r.Context(), f, p)
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchase_orders": list, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	po, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreatePORequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	src := Source{
		QuotationID:       req.QuotationID,
		MaterialRequestID: req.MaterialRequestID,
		VendorID:          req.VendorID,
		ExpectedDelivery:  req.ExpectedDelivery,
	}
	for _, item := range req.Items {
		src.Items = append(src.Items, ManualLine{
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
	po, err := h.service.CreatePurchaseOrder(r.Context(), src, nil)
	if err != nil {
		h.logger.Error("create purchase order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, PurchaseOrderResponse{
		ID: po.ID, PONumber: po.PONumber, Status: po.Status,
		TotalAmount: po.TotalAmount, VendorID: po.VendorID,
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
	status, err := h.service.SetStatus(r.Context(), id, Status(req.Status), lineEdits(req.LineEdits))
	if err != nil {
		h.logger.Error("set purchase order status", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req ApproveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	if err := h.service.Approve(r.Context(), id, req.ApprovedBy); err != nil {
		h.logger.Error("approve purchase order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": StatusApproved})
}

func (h *Handler) storeAcceptance(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req StoreAcceptanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}
	if err := h.service.SetStoreAcceptance(r.Context(), id, AcceptanceStatus(req.Status), lineEdits(req.LineEdits)); err != nil {
		h.logger.Error("set store acceptance", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "store_acceptance": req.Status})
}

func lineEdits(reqs []LineEditReq) []LineEdit {
	var out []LineEdit
	for _, e := range reqs {
		out = append(out, LineEdit{ItemID: e.ItemID, AcceptedQuantity: e.AcceptedQuantity})
	}
	return out
}
