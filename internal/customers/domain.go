// Package customers holds the CRM read models: the customer register and
// each customer's purchase history assembled from the sales ledger.
package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/gestix-erp/gestix/internal/sales"
)

// Customer is a company-scoped CRM record.
type Customer struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	TaxNumber string
	Phone     string
	Email     string
	Address   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// History pairs a customer with their sales, newest first, plus running totals.
type History struct {
	Customer    Customer
	Sales       []sales.Sale
	TotalSpent  float64
	Outstanding float64
}

// ListFilter filters customer listings. Search matches folded names.
type ListFilter struct {
	CompanyID uuid.UUID
	Search    string
	Limit     int
	Offset    int
}
