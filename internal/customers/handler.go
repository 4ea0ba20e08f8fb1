package customers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

// Handler wires the CRM endpoints.
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

// MountRoutes registers customer routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireView("customers"))
		r.Get("/customers", h.handleList)
		r.Get("/customers/{customerID}", h.handleGet)
		r.Get("/customers/{customerID}/history", h.handleHistory)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("customers"))
		r.Post("/customers", h.handleCreate)
		r.Put("/customers/{customerID}", h.handleUpdate)
		r.Delete("/customers/{customerID}", h.handleDelete)
	})
}

type customerRequest struct {
	Name      string `json:"name" validate:"required"`
	TaxNumber string `json:"taxNumber"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	list, err := h.service.List(r.Context(), ListFilter{
		CompanyID: companyID,
		Search:    r.URL.Query().Get("search"),
	})
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	customerID, err := httpx.URLUUID(r, "customerID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Customer", err.Error())
		return
	}
	c, err := h.service.Get(r.Context(), companyID, customerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	customerID, err := httpx.URLUUID(r, "customerID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Customer", err.Error())
		return
	}
	history, err := h.service.History(r.Context(), companyID, customerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req customerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Create(r.Context(), Customer{
		CompanyID: companyID,
		Name:      req.Name,
		TaxNumber: req.TaxNumber,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Notes:     req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	customerID, err := httpx.URLUUID(r, "customerID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Customer", err.Error())
		return
	}
	var req customerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c := Customer{
		ID:        customerID,
		CompanyID: companyID,
		Name:      req.Name,
		TaxNumber: req.TaxNumber,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Notes:     req.Notes,
	}
	if err := h.service.Update(r.Context(), c); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	customerID, err := httpx.URLUUID(r, "customerID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Customer", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), companyID, customerID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
