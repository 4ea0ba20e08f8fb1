package finance

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregation queries and the expense ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summarize aggregates sales and expenses per day across the window.
func (r *Repository) Summarize(ctx context.Context, filter SummaryFilter) (Summary, error) {
	summary := Summary{From: filter.From, To: filter.To}

	salesQuery := `SELECT to_char(date, 'YYYY-MM-DD') AS day,
	       COALESCE(SUM(total_value), 0),
	       COALESCE(SUM(total_value - amount_paid), 0)
	  FROM sales
	 WHERE company_id = $1 AND date >= $2 AND date < $3`
	expenseQuery := `SELECT to_char(date, 'YYYY-MM-DD') AS day,
	       COALESCE(SUM(amount), 0)
	  FROM expenses
	 WHERE company_id = $1 AND date >= $2 AND date < $3`
	args := []interface{}{filter.CompanyID, filter.From, filter.To}
	if filter.Location != "" {
		salesQuery += " AND location = $4"
		expenseQuery += " AND location = $4"
		args = append(args, filter.Location)
	}
	salesQuery += " GROUP BY day ORDER BY day"
	expenseQuery += " GROUP BY day ORDER BY day"

	byDay := map[string]*DayTotals{}
	var order []string

	rows, err := r.pool.Query(ctx, salesQuery, args...)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var day string
		var revenue, outstanding float64
		if err := rows.Scan(&day, &revenue, &outstanding); err != nil {
			return Summary{}, err
		}
		byDay[day] = &DayTotals{Day: day, Revenue: revenue, Outstanding: outstanding}
		order = append(order, day)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	expRows, err := r.pool.Query(ctx, expenseQuery, args...)
	if err != nil {
		return Summary{}, err
	}
	defer expRows.Close()
	for expRows.Next() {
		var day string
		var amount float64
		if err := expRows.Scan(&day, &amount); err != nil {
			return Summary{}, err
		}
		if d, ok := byDay[day]; ok {
			d.Expenses = amount
		} else {
			byDay[day] = &DayTotals{Day: day, Expenses: amount}
			order = append(order, day)
		}
	}
	if err := expRows.Err(); err != nil {
		return Summary{}, err
	}

	sortDays(order)
	for _, day := range order {
		d := byDay[day]
		summary.Days = append(summary.Days, *d)
		summary.TotalRevenue += d.Revenue
		summary.TotalOutstanding += d.Outstanding
		summary.TotalExpenses += d.Expenses
	}
	summary.Net = summary.TotalRevenue - summary.TotalExpenses
	return summary, nil
}

// CreateExpense inserts an expense entry.
func (r *Repository) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO expenses (id, company_id, date, description, category, amount, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		e.ID, e.CompanyID, e.Date, e.Description, e.Category, e.Amount, e.Location).
		Scan(&e.CreatedAt)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}

// ListExpenses returns expenses matching the filter, newest first.
func (r *Repository) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	conditions := "company_id = $1"
	args := []interface{}{filter.CompanyID}
	argPos := 2

	if !filter.From.IsZero() {
		conditions += fmt.Sprintf(" AND date >= $%d", argPos)
		args = append(args, filter.From)
		argPos++
	}
	if !filter.To.IsZero() {
		conditions += fmt.Sprintf(" AND date < $%d", argPos)
		args = append(args, filter.To)
		argPos++
	}
	if filter.Category != "" {
		conditions += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, filter.Category)
		argPos++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, company_id, date, description, category, amount, location, created_at
	  FROM expenses WHERE %s ORDER BY date DESC LIMIT $%d OFFSET $%d`, conditions, argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Date, &e.Description, &e.Category,
			&e.Amount, &e.Location, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func sortDays(days []string) {
	sort.Strings(days)
}
