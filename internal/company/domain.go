package company

import (
	"time"

	"github.com/google/uuid"
)

// Company is the aggregate root scoping every ledger. SaleCounter backs
// guide-number allocation and only moves inside coordinator transactions.
type Company struct {
	ID          uuid.UUID
	Name        string
	Currency    string
	SaleCounter int64
	CreatedAt   time.Time
}

// Location is a stock-keeping site of a company. Single-location companies
// operate with the empty location.
type Location struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	CreatedAt time.Time
}
