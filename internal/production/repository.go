package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/shared"
)

const productionColumns = `id, company_id, date, product_name, quantity, unit, location, registered_by, status, order_id, created_at`

// Repository reads the production ledger. Writes happen inside fulfillment
// coordinator transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads one production record.
func (r *Repository) Get(ctx context.Context, companyID, id uuid.UUID) (Production, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productionColumns+` FROM productions WHERE company_id = $1 AND id = $2`, companyID, id)
	return ScanProduction(row)
}

// List returns production records matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Production, int, error) {
	conditions := []string{"company_id = $1"}
	args := []interface{}{filter.CompanyID}
	argPos := 2

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", argPos))
		args = append(args, filter.Location)
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM productions WHERE %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM productions WHERE %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		productionColumns, where, argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Production
	for rows.Next() {
		p, err := ScanProduction(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

// ScanProduction reads one production row; shared with the fulfillment store.
func ScanProduction(row pgx.Row) (Production, error) {
	var p Production
	err := row.Scan(&p.ID, &p.CompanyID, &p.Date, &p.ProductName, &p.Quantity, &p.Unit,
		&p.Location, &p.RegisteredBy, &p.Status, &p.OrderID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Production{}, shared.ErrNotFound
		}
		return Production{}, err
	}
	return p, nil
}
