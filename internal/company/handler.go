package company

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

// Handler serves the company profile and its locations.
type Handler struct {
	logger   *slog.Logger
	repo     *Repository
	validate *validator.Validate
	perms    httpx.PermissionMiddleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, repo *Repository, perms httpx.PermissionMiddleware) *Handler {
	return &Handler{
		logger:   logger,
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		perms:    perms,
	}
}

// MountRoutes registers company routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireView("settings"))
		r.Get("/", h.handleGet)
		r.Get("/locations", h.handleListLocations)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.RequireEdit("settings"))
		r.Post("/locations", h.handleCreateLocation)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	c, err := h.repo.Get(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleListLocations(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	locations, err := h.repo.ListLocations(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, locations)
}

type locationRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.URLUUID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Company", err.Error())
		return
	}
	var req locationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	loc, err := h.repo.CreateLocation(r.Context(), companyID, req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loc)
}
