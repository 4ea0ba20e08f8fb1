package orders

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates order lifecycle states.
type Status string

const (
	// StatusPending is a committed order production has not started on.
	StatusPending Status = "Pendente"
	// StatusInProduction is an order being manufactured.
	StatusInProduction Status = "Em produção"
	// StatusCompleted is a fully produced order.
	StatusCompleted Status = "Concluída"
)

// Order links a committed customer order to its reservation and production runs.
type Order struct {
	ID                  uuid.UUID
	CompanyID           uuid.UUID
	ProductName         string
	Quantity            float64
	UnitPrice           float64
	TotalValue          float64
	Status              Status
	QuantityProduced    float64
	ProductionStartDate *time.Time
	DeliveryDate        *time.Time
	ClientName          string
	Location            string
	GuideNumber         string
	ProductionLogs      []ProductionLog
	CreatedAt           time.Time
}

// Missing is the quantity still to be produced.
func (o Order) Missing() float64 {
	return o.Quantity - o.QuantityProduced
}

// ProductionLog is one production run registered against an order.
type ProductionLog struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Date         time.Time
	Quantity     float64
	RegisteredBy string
}

// ListFilter filters order listings.
type ListFilter struct {
	CompanyID uuid.UUID
	Status    Status
	Location  string
	Limit     int
	Offset    int
}
