package finance

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

// Handler wires the finance endpoints.
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

// MountRoutes registers finance routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireView("finance"))
		r.Get("/finance/summary", h.handleSummary)
		r.Get("/expenses", h.handleListExpenses)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("finance"))
		r.Post("/expenses", h.handleCreateExpense)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	q := r.URL.Query()
	from, to, err := parseWindow(q.Get("from"), q.Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
		return
	}
	summary, err := h.service.Summary(r.Context(), SummaryFilter{
		CompanyID: companyID,
		From:      from,
		To:        to,
		Location:  q.Get("location"),
	})
	if err != nil {
		h.logger.Error("finance summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

type expenseRequest struct {
	Date        string  `json:"date" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Location    string  `json:"location"`
}

func (h *Handler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return
	}
	e, err := h.service.RecordExpense(r.Context(), Expense{
		CompanyID:   companyID,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Location:    req.Location,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	q := r.URL.Query()
	filter := ExpenseFilter{CompanyID: companyID, Category: q.Get("category")}
	if raw := q.Get("from"); raw != "" {
		if filter.From, err = time.Parse("2006-01-02", raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		if filter.To, err = time.Parse("2006-01-02", raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
			return
		}
	}
	expenses, err := h.service.ListExpenses(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expenses)
}

// parseWindow defaults to the trailing 30 days when bounds are omitted. The
// upper bound is exclusive.
func parseWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)

	var err error
	if fromRaw != "" {
		if from, err = time.Parse("2006-01-02", fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toRaw != "" {
		if to, err = time.Parse("2006-01-02", toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}
