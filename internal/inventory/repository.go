package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/shared"
)

const instanceColumns = `id, company_id, product_name, location, stock, reserved_stock, price, unit, low_stock_threshold, critical_stock_threshold, last_updated`

// Repository reads the inventory ledger. All writes go through the
// fulfillment coordinator's transactional store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads one instance by id.
func (r *Repository) Get(ctx context.Context, companyID, id uuid.UUID) (Instance, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM inventory_instances WHERE company_id = $1 AND id = $2`, companyID, id)
	return scanInstance(row)
}

// List returns instances matching the filter ordered by product name.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Instance, error) {
	conditions := []string{"company_id = $1"}
	args := []interface{}{filter.CompanyID}
	argPos := 2

	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", argPos))
		args = append(args, filter.Location)
		argPos++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("product_name ILIKE $%d", argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	where := conditions[0]
	for i := 1; i < len(conditions); i++ {
		where += " AND " + conditions[i]
	}

	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM inventory_instances WHERE %s ORDER BY product_name, location`, instanceColumns, where),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstances(rows)
}

// ListBelowThreshold returns instances whose available stock is at or below
// the low threshold.
func (r *Repository) ListBelowThreshold(ctx context.Context, companyID uuid.UUID) ([]Instance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+instanceColumns+` FROM inventory_instances
		 WHERE company_id = $1 AND (stock - reserved_stock) <= low_stock_threshold
		 ORDER BY (stock - reserved_stock) ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstances(rows)
}

// ListAnomalies returns instances whose reservations exceed on-hand stock.
func (r *Repository) ListAnomalies(ctx context.Context, companyID uuid.UUID) ([]Anomaly, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+instanceColumns+` FROM inventory_instances
		 WHERE company_id = $1 AND reserved_stock > stock
		 ORDER BY (reserved_stock - stock) DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances, err := collectInstances(rows)
	if err != nil {
		return nil, err
	}
	anomalies := make([]Anomaly, 0, len(instances))
	for _, inst := range instances {
		anomalies = append(anomalies, Anomaly{Instance: inst, ShortfallBy: inst.ReservedStock - inst.Stock})
	}
	return anomalies, nil
}

func scanInstance(row pgx.Row) (Instance, error) {
	var inst Instance
	err := row.Scan(&inst.ID, &inst.CompanyID, &inst.ProductName, &inst.Location,
		&inst.Stock, &inst.ReservedStock, &inst.Price, &inst.Unit,
		&inst.LowStockThreshold, &inst.CriticalStockThreshold, &inst.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Instance{}, shared.ErrNotFound
		}
		return Instance{}, err
	}
	return inst, nil
}

func collectInstances(rows pgx.Rows) ([]Instance, error) {
	var instances []Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
