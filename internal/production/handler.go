package production

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

// Handler wires production ledger read endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
	perms  httpx.PermissionMiddleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, repo *Repository, perms httpx.PermissionMiddleware) *Handler {
	return &Handler{logger: logger, repo: repo, perms: perms}
}

// MountRoutes registers production routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireView("production"))
		r.Get("/productions", h.handleList)
		r.Get("/productions/{productionID}", h.handleGet)
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
	if raw := q.Get("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.To = t
		}
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	result, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list productions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"productions": result, "total": total})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
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
	prod, err := h.repo.Get(r.Context(), companyID, productionID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, prod)
}
