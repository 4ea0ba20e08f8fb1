// Package finance aggregates the sales and expense ledgers into the daily
// summaries behind the dashboard. Summaries are cached in Redis and
// deduplicated with singleflight so a dashboard refresh storm hits the
// database once.
package finance

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a company-scoped cost entry.
type Expense struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Date        time.Time
	Description string
	Category    string
	Amount      float64
	Location    string
	CreatedAt   time.Time
}

// DayTotals is one day of the summary window.
type DayTotals struct {
	Day         string  `json:"day"`
	Revenue     float64 `json:"revenue"`
	Outstanding float64 `json:"outstanding"`
	Expenses    float64 `json:"expenses"`
}

// Summary covers a date window. Outstanding is the unpaid remainder across
// the window's documents; Net is revenue minus expenses.
type Summary struct {
	From             time.Time   `json:"from"`
	To               time.Time   `json:"to"`
	TotalRevenue     float64     `json:"totalRevenue"`
	TotalOutstanding float64     `json:"totalOutstanding"`
	TotalExpenses    float64     `json:"totalExpenses"`
	Net              float64     `json:"net"`
	Days             []DayTotals `json:"days"`
}

// SummaryFilter scopes a summary request.
type SummaryFilter struct {
	CompanyID uuid.UUID
	From      time.Time
	To        time.Time
	Location  string
}

// ExpenseFilter filters expense listings.
type ExpenseFilter struct {
	CompanyID uuid.UUID
	From      time.Time
	To        time.Time
	Category  string
	Limit     int
	Offset    int
}
