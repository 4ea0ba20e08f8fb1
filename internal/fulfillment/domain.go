package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/gestix-erp/gestix/internal/inventory"
	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/production"
	"github.com/gestix-erp/gestix/internal/sales"
)

// CreateSaleInput describes a checkout. PickupLater holds the quantity as a
// reservation (status Pago); otherwise the merchandise leaves with the
// customer and stock is consumed immediately (status Levantado).
type CreateSaleInput struct {
	CompanyID      uuid.UUID
	ProductName    string
	Location       string
	Quantity       float64
	UnitPrice      float64
	Discount       float64
	VATRate        float64
	AmountPaid     float64
	CustomerID     *uuid.UUID
	ClientName     string
	PickupLater    bool
	Date           time.Time
	ActorID        string
	IdempotencyKey string
}

// CreateSaleResult carries the created sale and any soft warnings.
type CreateSaleResult struct {
	Sale     sales.Sale
	Warnings []string
}

// CreateOrderInput describes a committed customer order.
type CreateOrderInput struct {
	CompanyID      uuid.UUID
	ProductName    string
	Location       string
	Quantity       float64
	UnitPrice      float64
	AmountPaid     float64
	CustomerID     *uuid.UUID
	ClientName     string
	DeliveryDate   *time.Time
	Date           time.Time
	ActorID        string
	IdempotencyKey string
}

// CreateOrderResult carries the order, its companion sale and soft warnings.
type CreateOrderResult struct {
	Order    orders.Order
	Sale     sales.Sale
	Warnings []string
}

// PickupResult is the outcome of confirming a pickup.
type PickupResult struct {
	Sale     sales.Sale
	Warnings []string
}

// DeleteSaleResult reports the reservation released by the deletion, if any.
type DeleteSaleResult struct {
	ReleasedQuantity float64
	Warnings         []string
}

// AutoCompleteResult carries the completed order, the shortfall production
// record when one was created, and soft warnings.
type AutoCompleteResult struct {
	Order      orders.Order
	Production *production.Production
	Warnings   []string
}

// RegisterProductionInput records manufactured quantity, optionally moving it
// straight into inventory.
type RegisterProductionInput struct {
	CompanyID    uuid.UUID
	ProductName  string
	Quantity     float64
	Unit         string
	Location     string
	RegisteredBy string
	Date         time.Time
	TransferNow  bool
	ActorID      string
}

// RegisterProductionResult carries the production record and soft warnings.
type RegisterProductionResult struct {
	Production production.Production
	Warnings   []string
}

// AuditStockInput overwrites an instance's stock with a physical count.
type AuditStockInput struct {
	CompanyID     uuid.UUID
	InstanceID    uuid.UUID
	PhysicalCount float64
	Reason        string
	ActorID       string
}

// AuditStockResult reports the applied adjustment and any anomaly warnings.
type AuditStockResult struct {
	Instance   inventory.Instance
	Adjustment float64
	Warnings   []string
}

// TransferStockInput moves on-hand stock between two locations.
type TransferStockInput struct {
	CompanyID    uuid.UUID
	ProductName  string
	FromLocation string
	ToLocation   string
	Quantity     float64
	ActorID      string
}
