package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Instance is the per-(product, location) stock record. Stock is on-hand
// quantity; ReservedStock is sold-but-not-picked-up quantity held against
// future pickups. Invariant after every coordinator transaction:
// 0 <= ReservedStock <= Stock.
type Instance struct {
	ID                     uuid.UUID
	CompanyID              uuid.UUID
	ProductName            string
	Location               string
	Stock                  float64
	ReservedStock          float64
	Price                  float64
	Unit                   string
	LowStockThreshold      float64
	CriticalStockThreshold float64
	LastUpdated            time.Time
}

// Available is the quantity sellable right now.
func (i Instance) Available() float64 {
	return i.Stock - i.ReservedStock
}

// StockLevel classifies an instance against its thresholds.
type StockLevel string

const (
	StockLevelOK       StockLevel = "ok"
	StockLevelLow      StockLevel = "baixo"
	StockLevelCritical StockLevel = "crítico"
)

// Level reports the severity bucket for the instance's available stock.
func (i Instance) Level() StockLevel {
	available := i.Available()
	switch {
	case available <= i.CriticalStockThreshold:
		return StockLevelCritical
	case available <= i.LowStockThreshold:
		return StockLevelLow
	default:
		return StockLevelOK
	}
}

// ListFilter filters instance listings.
type ListFilter struct {
	CompanyID uuid.UUID
	Location  string
	Search    string
}

// Anomaly is an instance whose reservations exceed on-hand stock, usually
// after a physical count overwrote stock below outstanding reservations.
type Anomaly struct {
	Instance    Instance
	ShortfallBy float64
}
