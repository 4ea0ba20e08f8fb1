package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

// Handler wires catalog settings endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	perms    httpx.PermissionMiddleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, perms httpx.PermissionMiddleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		perms:    perms,
	}
}

// MountRoutes registers catalog routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireView("settings"))
		r.Get("/products", h.handleList)
		r.Get("/categories", h.handleListCategories)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("settings"))
		r.Post("/products", h.handleCreate)
		r.Put("/products/{productID}", h.handleUpdate)
		r.Delete("/products", h.handleDelete)
		r.Post("/categories", h.handleCreateCategory)
	})
}

type productRequest struct {
	Name                   string  `json:"name" validate:"required"`
	Category               string  `json:"category"`
	Price                  float64 `json:"price" validate:"gte=0"`
	Unit                   string  `json:"unit" validate:"required"`
	LowStockThreshold      float64 `json:"lowStockThreshold" validate:"gte=0"`
	CriticalStockThreshold float64 `json:"criticalStockThreshold" validate:"gte=0"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	q := r.URL.Query()
	products, err := h.service.List(r.Context(), ListFilter{
		CompanyID: companyID,
		Category:  q.Get("category"),
		Search:    q.Get("search"),
	})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), Product{
		CompanyID:              companyID,
		Name:                   req.Name,
		Category:               req.Category,
		Price:                  req.Price,
		Unit:                   req.Unit,
		LowStockThreshold:      req.LowStockThreshold,
		CriticalStockThreshold: req.CriticalStockThreshold,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	productID, err := httpx.URLUUID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", err.Error())
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	p := Product{
		ID:                     productID,
		CompanyID:              companyID,
		Name:                   req.Name,
		Category:               req.Category,
		Price:                  req.Price,
		Unit:                   req.Unit,
		LowStockThreshold:      req.LowStockThreshold,
		CriticalStockThreshold: req.CriticalStockThreshold,
	}
	if err := h.service.Update(r.Context(), p); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "name query parameter required")
		return
	}
	if err := h.service.Delete(r.Context(), companyID, name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	categories, err := h.service.ListCategories(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.CreateCategory(r.Context(), companyID, req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}
