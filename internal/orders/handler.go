package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

// Handler wires order ledger read endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
	perms  httpx.PermissionMiddleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, repo *Repository, perms httpx.PermissionMiddleware) *Handler {
	return &Handler{logger: logger, repo: repo, perms: perms}
}

// MountRoutes registers order routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireView("orders"))
		r.Get("/orders", h.handleList)
		r.Get("/orders/{orderID}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	q := r.URL.Query()
	filter := ListFilter{
		CompanyID: companyID,
		Status:    Status(q.Get("status")),
		Location:  q.Get("location"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	result, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": result, "total": total})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
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
	order, err := h.repo.Get(r.Context(), companyID, orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
