package fulfillment

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/platform/httpx"
	"github.com/gestix-erp/gestix/internal/shared"
)

// AnomalyScanScheduler enqueues a background sweep of every instance whose
// reservations exceed on-hand stock.
type AnomalyScanScheduler interface {
	ScheduleAnomalyScan(ctx context.Context) error
}

// Handler wires the coordinator's mutation endpoints. Read endpoints live in
// the ledger packages.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	perms    httpx.PermissionMiddleware
	scans    AnomalyScanScheduler
}

// NewHandler constructs the handler. scans may be nil when no job queue is
// configured.
func NewHandler(logger *slog.Logger, service *Service, perms httpx.PermissionMiddleware, scans AnomalyScanScheduler) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		perms:    perms,
		scans:    scans,
	}
}

// MountRoutes registers coordinator routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("sales"))
		r.Post("/sales", h.handleCreateSale)
		r.Post("/sales/{saleID}/pickup", h.handleConfirmPickup)
		r.Delete("/sales/{saleID}", h.handleDeleteSale)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("orders"))
		r.Post("/orders", h.handleCreateOrder)
		r.Post("/orders/{orderID}/status", h.handleUpdateOrderStatus)
		r.Post("/orders/{orderID}/auto-complete", h.handleAutoComplete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("production"))
		r.Post("/productions", h.handleRegisterProduction)
		r.Post("/productions/{productionID}/transfer", h.handleTransferProduction)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("inventory"))
		r.Post("/stock/audit", h.handleAuditStock)
		r.Post("/stock/transfer", h.handleTransferStock)
	})
}

type createSaleRequest struct {
	ProductName string     `json:"productName" validate:"required"`
	Location    string     `json:"location"`
	Quantity    float64    `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64    `json:"unitPrice" validate:"gte=0"`
	Discount    float64    `json:"discount" validate:"gte=0"`
	VATRate     float64    `json:"vatRate" validate:"gte=0,lte=1"`
	AmountPaid  float64    `json:"amountPaid" validate:"gte=0"`
	CustomerID  *uuid.UUID `json:"customerId"`
	ClientName  string     `json:"clientName"`
	PickupLater bool       `json:"pickupLater"`
}

func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req createSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	result, err := h.service.CreateSale(r.Context(), CreateSaleInput{
		CompanyID:      companyID,
		ProductName:    req.ProductName,
		Location:       req.Location,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		Discount:       req.Discount,
		VATRate:        req.VATRate,
		AmountPaid:     req.AmountPaid,
		CustomerID:     req.CustomerID,
		ClientName:     req.ClientName,
		PickupLater:    req.PickupLater,
		ActorID:        actorID(r),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Warn("create sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"sale": result.Sale, "warnings": result.Warnings})
}

type createOrderRequest struct {
	ProductName  string     `json:"productName" validate:"required"`
	Location     string     `json:"location"`
	Quantity     float64    `json:"quantity" validate:"required,gt=0"`
	UnitPrice    float64    `json:"unitPrice" validate:"gte=0"`
	AmountPaid   float64    `json:"amountPaid" validate:"gte=0"`
	CustomerID   *uuid.UUID `json:"customerId"`
	ClientName   string     `json:"clientName" validate:"required"`
	DeliveryDate *time.Time `json:"deliveryDate"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	result, err := h.service.CreateOrder(r.Context(), CreateOrderInput{
		CompanyID:      companyID,
		ProductName:    req.ProductName,
		Location:       req.Location,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		AmountPaid:     req.AmountPaid,
		CustomerID:     req.CustomerID,
		ClientName:     req.ClientName,
		DeliveryDate:   req.DeliveryDate,
		ActorID:        actorID(r),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Warn("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"order":    result.Order,
		"sale":     result.Sale,
		"warnings": result.Warnings,
	})
}

func (h *Handler) handleConfirmPickup(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	saleID, err := httpx.URLUUID(r, "saleID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale", err.Error())
		return
	}

	result, err := h.service.ConfirmPickup(r.Context(), companyID, saleID, actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": result.Sale, "warnings": result.Warnings})
}

func (h *Handler) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	saleID, err := httpx.URLUUID(r, "saleID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale", err.Error())
		return
	}

	result, err := h.service.DeleteSale(r.Context(), companyID, saleID, actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"releasedQuantity": result.ReleasedQuantity,
		"warnings":         result.Warnings,
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	orderID, err := httpx.URLUUID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Order", err.Error())
		return
	}
	var req updateOrderStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), companyID, orderID, orders.Status(req.Status), actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleAutoComplete(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	orderID, err := httpx.URLUUID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Order", err.Error())
		return
	}

	result, err := h.service.AutoCompleteProduction(r.Context(), companyID, orderID, actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order":      result.Order,
		"production": result.Production,
		"warnings":   result.Warnings,
	})
}

type registerProductionRequest struct {
	ProductName  string  `json:"productName" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"required,gt=0"`
	Unit         string  `json:"unit"`
	Location     string  `json:"location"`
	RegisteredBy string  `json:"registeredBy" validate:"required"`
	TransferNow  bool    `json:"transferNow"`
}

func (h *Handler) handleRegisterProduction(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req registerProductionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	result, err := h.service.RegisterProduction(r.Context(), RegisterProductionInput{
		CompanyID:    companyID,
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Location:     req.Location,
		RegisteredBy: req.RegisteredBy,
		TransferNow:  req.TransferNow,
		ActorID:      actorID(r),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"production": result.Production, "warnings": result.Warnings})
}

func (h *Handler) handleTransferProduction(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	productionID, err := httpx.URLUUID(r, "productionID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Production", err.Error())
		return
	}

	prod, err := h.service.TransferProduction(r.Context(), companyID, productionID, actorID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, prod)
}

type auditStockRequest struct {
	InstanceID    uuid.UUID `json:"instanceId" validate:"required"`
	PhysicalCount float64   `json:"physicalCount" validate:"gte=0"`
	Reason        string    `json:"reason" validate:"required"`
}

func (h *Handler) handleAuditStock(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req auditStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	result, err := h.service.AuditStock(r.Context(), AuditStockInput{
		CompanyID:     companyID,
		InstanceID:    req.InstanceID,
		PhysicalCount: req.PhysicalCount,
		Reason:        req.Reason,
		ActorID:       actorID(r),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if h.scans != nil && slices.Contains(result.Warnings, shared.WarnStockBelowReservations) {
		// One anomalous count is reason to sweep the rest of the company.
		if err := h.scans.ScheduleAnomalyScan(r.Context()); err != nil {
			h.logger.Warn("schedule anomaly scan", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"instance":   result.Instance,
		"adjustment": result.Adjustment,
		"warnings":   result.Warnings,
	})
}

type transferStockRequest struct {
	ProductName  string  `json:"productName" validate:"required"`
	FromLocation string  `json:"fromLocation"`
	ToLocation   string  `json:"toLocation"`
	Quantity     float64 `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) handleTransferStock(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req transferStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	err = h.service.TransferStock(r.Context(), TransferStockInput{
		CompanyID:    companyID,
		ProductName:  req.ProductName,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		Quantity:     req.Quantity,
		ActorID:      actorID(r),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func actorID(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "anonymous"
}
