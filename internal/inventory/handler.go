package inventory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

// Handler wires inventory read endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
	perms  httpx.PermissionMiddleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, repo *Repository, perms httpx.PermissionMiddleware) *Handler {
	return &Handler{logger: logger, repo: repo, perms: perms}
}

// MountRoutes registers inventory routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireView("inventory"))
		r.Get("/stock", h.handleList)
		r.Get("/stock/low", h.handleLowStock)
		r.Get("/stock/anomalies", h.handleAnomalies)
		r.Get("/stock/{instanceID}", h.handleGet)
	})
}

type instanceView struct {
	Instance
	Available float64    `json:"available"`
	Level     StockLevel `json:"level"`
}

func view(inst Instance) instanceView {
	return instanceView{Instance: inst, Available: inst.Available(), Level: inst.Level()}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	q := r.URL.Query()
	instances, err := h.repo.List(r.Context(), ListFilter{
		CompanyID: companyID,
		Location:  q.Get("location"),
		Search:    q.Get("search"),
	})
	if err != nil {
		h.logger.Error("list stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]instanceView, 0, len(instances))
	for _, inst := range instances {
		views = append(views, view(inst))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	instanceID, err := httpx.URLUUID(r, "instanceID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Instance", err.Error())
		return
	}
	inst, err := h.repo.Get(r.Context(), companyID, instanceID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(inst))
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	instances, err := h.repo.ListBelowThreshold(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]instanceView, 0, len(instances))
	for _, inst := range instances {
		views = append(views, view(inst))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	anomalies, err := h.repo.ListAnomalies(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, anomalies)
}
