package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/inventory"
	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/platform/db"
	"github.com/gestix-erp/gestix/internal/production"
	"github.com/gestix-erp/gestix/internal/sales"
	"github.com/gestix-erp/gestix/internal/shared"
)

// PGStore is the PostgreSQL implementation of the coordinator Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// WithTx runs fn in a retryable repeatable-read transaction. Exhausted
// retries surface as shared.ErrTransactionFailed.
func (s *PGStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	err := db.WithTxRetry(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxStore{tx: tx})
	})
	if errors.Is(err, db.ErrTxRetriesExhausted) {
		return fmt.Errorf("%w: %v", shared.ErrTransactionFailed, err)
	}
	return err
}

type pgTxStore struct {
	tx pgx.Tx
}

const instanceColumns = `id, company_id, product_name, location, stock, reserved_stock, price, unit, low_stock_threshold, critical_stock_threshold, last_updated`

func (s *pgTxStore) GetInstanceForUpdate(ctx context.Context, companyID uuid.UUID, productName, location string) (inventory.Instance, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM inventory_instances
		 WHERE company_id = $1 AND product_name = $2 AND location = $3 FOR UPDATE`,
		companyID, productName, location)
	return scanInstance(row)
}

func (s *pgTxStore) GetInstanceByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (inventory.Instance, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM inventory_instances
		 WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
	return scanInstance(row)
}

func (s *pgTxStore) InsertInstance(ctx context.Context, inst inventory.Instance) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO inventory_instances (id, company_id, product_name, location, stock, reserved_stock, price, unit, low_stock_threshold, critical_stock_threshold, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
		inst.ID, inst.CompanyID, inst.ProductName, inst.Location, inst.Stock, inst.ReservedStock,
		inst.Price, inst.Unit, inst.LowStockThreshold, inst.CriticalStockThreshold)
	return err
}

func (s *pgTxStore) UpdateInstanceStock(ctx context.Context, id uuid.UUID, stock, reservedStock float64) error {
	tag, err := s.tx.Exec(ctx,
		`UPDATE inventory_instances SET stock = $2, reserved_stock = $3, last_updated = NOW() WHERE id = $1`,
		id, stock, reservedStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (s *pgTxStore) NextGuideSequence(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var seq int64
	err := s.tx.QueryRow(ctx,
		`UPDATE companies SET sale_counter = sale_counter + 1 WHERE id = $1 RETURNING sale_counter`,
		companyID).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("fulfillment: company: %w", shared.ErrNotFound)
		}
		return 0, err
	}
	return seq, nil
}

func (s *pgTxStore) InsertSale(ctx context.Context, sale sales.Sale) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO sales (id, company_id, date, product_name, quantity, unit_price, subtotal, discount, vat, total_value, amount_paid, status, document_type, guide_number, location, customer_id, client_name, order_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		sale.ID, sale.CompanyID, sale.Date, sale.ProductName, sale.Quantity, sale.UnitPrice,
		sale.Subtotal, sale.Discount, sale.VAT, sale.TotalValue, sale.AmountPaid, sale.Status,
		sale.DocumentType, sale.GuideNumber, sale.Location, sale.CustomerID, sale.ClientName, sale.OrderID)
	return err
}

func (s *pgTxStore) GetSaleForUpdate(ctx context.Context, companyID, id uuid.UUID) (sales.Sale, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT id, company_id, date, product_name, quantity, unit_price, subtotal, discount, vat, total_value, amount_paid, status, document_type, guide_number, location, customer_id, client_name, order_id, created_at
		 FROM sales WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
	return sales.ScanSale(row)
}

func (s *pgTxStore) UpdateSaleStatus(ctx context.Context, id uuid.UUID, status sales.Status) error {
	tag, err := s.tx.Exec(ctx, `UPDATE sales SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (s *pgTxStore) DeleteSale(ctx context.Context, id uuid.UUID) error {
	tag, err := s.tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (s *pgTxStore) InsertOrder(ctx context.Context, o orders.Order) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO orders (id, company_id, product_name, quantity, unit_price, total_value, status, quantity_produced, production_start_date, delivery_date, client_name, location, guide_number)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.CompanyID, o.ProductName, o.Quantity, o.UnitPrice, o.TotalValue, o.Status,
		o.QuantityProduced, o.ProductionStartDate, o.DeliveryDate, o.ClientName, o.Location, o.GuideNumber)
	return err
}

func (s *pgTxStore) GetOrderForUpdate(ctx context.Context, companyID, id uuid.UUID) (orders.Order, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT id, company_id, product_name, quantity, unit_price, total_value, status, quantity_produced, production_start_date, delivery_date, client_name, location, guide_number, created_at
		 FROM orders WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
	return orders.ScanOrder(row)
}

func (s *pgTxStore) UpdateOrderProgress(ctx context.Context, id uuid.UUID, status orders.Status, quantityProduced float64, productionStart *time.Time) error {
	tag, err := s.tx.Exec(ctx,
		`UPDATE orders SET status = $2, quantity_produced = $3, production_start_date = $4 WHERE id = $1`,
		id, status, quantityProduced, productionStart)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (s *pgTxStore) AppendProductionLog(ctx context.Context, log orders.ProductionLog) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO order_production_logs (id, order_id, date, quantity, registered_by)
		 VALUES ($1, $2, $3, $4, $5)`,
		log.ID, log.OrderID, log.Date, log.Quantity, log.RegisteredBy)
	return err
}

func (s *pgTxStore) InsertProduction(ctx context.Context, p production.Production) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO productions (id, company_id, date, product_name, quantity, unit, location, registered_by, status, order_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.CompanyID, p.Date, p.ProductName, p.Quantity, p.Unit, p.Location,
		p.RegisteredBy, p.Status, p.OrderID)
	return err
}

func (s *pgTxStore) GetProductionForUpdate(ctx context.Context, companyID, id uuid.UUID) (production.Production, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT id, company_id, date, product_name, quantity, unit, location, registered_by, status, order_id, created_at
		 FROM productions WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
	return production.ScanProduction(row)
}

func (s *pgTxStore) UpdateProductionStatus(ctx context.Context, id uuid.UUID, status production.Status) error {
	tag, err := s.tx.Exec(ctx, `UPDATE productions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInstance(row pgx.Row) (inventory.Instance, error) {
	var inst inventory.Instance
	err := row.Scan(&inst.ID, &inst.CompanyID, &inst.ProductName, &inst.Location,
		&inst.Stock, &inst.ReservedStock, &inst.Price, &inst.Unit,
		&inst.LowStockThreshold, &inst.CriticalStockThreshold, &inst.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.Instance{}, shared.ErrNotFound
		}
		return inventory.Instance{}, err
	}
	return inst, nil
}
