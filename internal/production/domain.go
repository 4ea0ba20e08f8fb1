package production

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates production record states.
type Status string

const (
	// StatusDone is registered production not yet in sellable inventory.
	StatusDone Status = "Concluído"
	// StatusTransferred is production moved into the inventory ledger. Terminal.
	StatusTransferred Status = "Transferido"
)

// Production records a manufactured quantity. Done production does not touch
// inventory; transferring it adds the quantity to the matching instance.
type Production struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Date         time.Time
	ProductName  string
	Quantity     float64
	Unit         string
	Location     string
	RegisteredBy string
	Status       Status
	OrderID      *uuid.UUID
	CreatedAt    time.Time
}

// ListFilter filters production listings.
type ListFilter struct {
	CompanyID uuid.UUID
	Status    Status
	Location  string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}
