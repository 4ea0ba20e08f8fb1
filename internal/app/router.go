package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gestix-erp/gestix/internal/catalog"
	"github.com/gestix-erp/gestix/internal/company"
	"github.com/gestix-erp/gestix/internal/customers"
	"github.com/gestix-erp/gestix/internal/finance"
	"github.com/gestix-erp/gestix/internal/fulfillment"
	"github.com/gestix-erp/gestix/internal/inventory"
	"github.com/gestix-erp/gestix/internal/observability"
	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/production"
	"github.com/gestix-erp/gestix/internal/sales"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	CompanyHandler     *company.Handler
	CatalogHandler     *catalog.Handler
	CustomersHandler   *customers.Handler
	FinanceHandler     *finance.Handler
	FulfillmentHandler *fulfillment.Handler
	InventoryHandler   *inventory.Handler
	SalesHandler       *sales.Handler
	OrdersHandler      *orders.Handler
	ProductionHandler  *production.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Gestix defaults. Every business
// route is scoped under /companies/{companyID}.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/companies/{companyID}", func(r chi.Router) {
		params.CompanyHandler.MountRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		params.InventoryHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.OrdersHandler.MountRoutes(r)
		params.ProductionHandler.MountRoutes(r)
		params.FulfillmentHandler.MountRoutes(r)
		params.CustomersHandler.MountRoutes(r)
		params.FinanceHandler.MountRoutes(r)
	})

	return r
}
