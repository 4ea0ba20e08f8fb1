package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/shared"
)

const orderColumns = `id, company_id, product_name, quantity, unit_price, total_value, status, quantity_produced, production_start_date, delivery_date, client_name, location, guide_number, created_at`

// Repository reads the order ledger. Writes happen inside fulfillment
// coordinator transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads one order with its production logs.
func (r *Repository) Get(ctx context.Context, companyID, id uuid.UUID) (Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE company_id = $1 AND id = $2`, companyID, id)
	o, err := ScanOrder(row)
	if err != nil {
		return Order{}, err
	}

	logs, err := r.listLogs(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.ProductionLogs = logs
	return o, nil
}

// List returns orders matching the filter, newest first, plus the total count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Order, int, error) {
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

	where := conditions[0]
	for i := 1; i < len(conditions); i++ {
		where += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM orders WHERE %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		o, err := ScanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, o)
	}
	return result, total, rows.Err()
}

func (r *Repository) listLogs(ctx context.Context, orderID uuid.UUID) ([]ProductionLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, date, quantity, registered_by FROM order_production_logs WHERE order_id = $1 ORDER BY date`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []ProductionLog
	for rows.Next() {
		var l ProductionLog
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Date, &l.Quantity, &l.RegisteredBy); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ScanOrder reads one order row; shared with the fulfillment store.
func ScanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CompanyID, &o.ProductName, &o.Quantity, &o.UnitPrice,
		&o.TotalValue, &o.Status, &o.QuantityProduced, &o.ProductionStartDate,
		&o.DeliveryDate, &o.ClientName, &o.Location, &o.GuideNumber, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}
