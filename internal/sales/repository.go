package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/shared"
)

const saleColumns = `id, company_id, date, product_name, quantity, unit_price, subtotal, discount, vat, total_value, amount_paid, status, document_type, guide_number, location, customer_id, client_name, order_id, created_at`

// Repository reads the sales ledger. Writes happen inside fulfillment
// coordinator transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads one sale.
func (r *Repository) Get(ctx context.Context, companyID, id uuid.UUID) (Sale, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE company_id = $1 AND id = $2`, companyID, id)
	return ScanSale(row)
}

// List returns sales matching the filter, newest first, plus the total count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	conditions := []string{"company_id = $1"}
	args := []interface{}{filter.CompanyID}
	argPos := 2

	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", argPos))
		args = append(args, filter.Location)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}
	if filter.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, *filter.CustomerID)
		argPos++
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argPos))
		args = append(args, filter.From)
		argPos++
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("date < $%d", argPos))
		args = append(args, filter.To)
		argPos++
	}

	where := conditions[0]
	for i := 1; i < len(conditions); i++ {
		where += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM sales WHERE %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM sales WHERE %s ORDER BY date DESC, guide_number DESC LIMIT $%d OFFSET $%d`,
		saleColumns, where, argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		s, err := ScanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	return sales, total, rows.Err()
}

// ScanSale reads one sale row; shared with the fulfillment store.
func ScanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.CompanyID, &s.Date, &s.ProductName, &s.Quantity, &s.UnitPrice,
		&s.Subtotal, &s.Discount, &s.VAT, &s.TotalValue, &s.AmountPaid, &s.Status,
		&s.DocumentType, &s.GuideNumber, &s.Location, &s.CustomerID, &s.ClientName,
		&s.OrderID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, err
	}
	return s, nil
}
