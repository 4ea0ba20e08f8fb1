package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is reference data: the canonical definition of a sellable item.
// Per-location stock lives in the inventory ledger; instances may diverge
// from these defaults.
type Product struct {
	ID                     uuid.UUID
	CompanyID              uuid.UUID
	Name                   string
	Category               string
	Price                  float64
	Unit                   string
	LowStockThreshold      float64
	CriticalStockThreshold float64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Category groups products for reporting and settings screens.
type Category struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	CreatedAt time.Time
}
