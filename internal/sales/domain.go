package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status enumerates sale lifecycle states.
type Status string

const (
	// StatusPaid marks a paid sale awaiting pickup; its quantity is reserved.
	StatusPaid Status = "Pago"
	// StatusPickedUp marks a collected sale; its quantity is consumed stock.
	StatusPickedUp Status = "Levantado"
)

// DocumentType distinguishes direct sales from order-backed sales.
type DocumentType string

const (
	// DocumentTypeSale is a point-of-sale or pickup sale.
	DocumentTypeSale DocumentType = "Venda"
	// DocumentTypeOrder is the companion sale of a production order.
	DocumentTypeOrder DocumentType = "Encomenda"
)

// GuidePrefix returns the guide-number prefix printed for the document type.
func (d DocumentType) GuidePrefix() string {
	if d == DocumentTypeOrder {
		return "ENC"
	}
	return "VND"
}

// FormatGuideNumber renders the company-scoped sequential guide number.
func FormatGuideNumber(docType DocumentType, seq int64) string {
	return fmt.Sprintf("%s-%06d", docType.GuidePrefix(), seq)
}

// Sale is one sale line record.
type Sale struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Date         time.Time
	ProductName  string
	Quantity     float64
	UnitPrice    float64
	Subtotal     float64
	Discount     float64
	VAT          float64
	TotalValue   float64
	AmountPaid   float64
	Status       Status
	DocumentType DocumentType
	GuideNumber  string
	Location     string
	CustomerID   *uuid.UUID
	ClientName   string
	OrderID      *uuid.UUID
	CreatedAt    time.Time
}

// Outstanding is the unpaid remainder of the sale.
func (s Sale) Outstanding() float64 {
	return s.TotalValue - s.AmountPaid
}

// ListFilter filters sale listings.
type ListFilter struct {
	CompanyID  uuid.UUID
	Location   string
	Status     Status
	CustomerID *uuid.UUID
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
