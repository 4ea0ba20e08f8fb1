package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gestix-erp/gestix/internal/catalog"
	"github.com/gestix-erp/gestix/internal/inventory"
	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/production"
	"github.com/gestix-erp/gestix/internal/sales"
	"github.com/gestix-erp/gestix/internal/shared"
)

// Store abstracts the coordinator's transactional persistence. WithTx must
// run fn atomically and may re-invoke it on write conflicts, so fn bodies
// perform all reads before any write.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// TxStore exposes the operations available inside a coordinator transaction.
type TxStore interface {
	GetInstanceForUpdate(ctx context.Context, companyID uuid.UUID, productName, location string) (inventory.Instance, error)
	GetInstanceByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (inventory.Instance, error)
	InsertInstance(ctx context.Context, inst inventory.Instance) error
	UpdateInstanceStock(ctx context.Context, id uuid.UUID, stock, reservedStock float64) error

	NextGuideSequence(ctx context.Context, companyID uuid.UUID) (int64, error)

	InsertSale(ctx context.Context, s sales.Sale) error
	GetSaleForUpdate(ctx context.Context, companyID, id uuid.UUID) (sales.Sale, error)
	UpdateSaleStatus(ctx context.Context, id uuid.UUID, status sales.Status) error
	DeleteSale(ctx context.Context, id uuid.UUID) error

	InsertOrder(ctx context.Context, o orders.Order) error
	GetOrderForUpdate(ctx context.Context, companyID, id uuid.UUID) (orders.Order, error)
	UpdateOrderProgress(ctx context.Context, id uuid.UUID, status orders.Status, quantityProduced float64, productionStart *time.Time) error
	AppendProductionLog(ctx context.Context, log orders.ProductionLog) error

	InsertProduction(ctx context.Context, p production.Production) error
	GetProductionForUpdate(ctx context.Context, companyID, id uuid.UUID) (production.Production, error)
	UpdateProductionStatus(ctx context.Context, id uuid.UUID, status production.Status) error
}

// IdempotencyPort stores submission keys so a retried request is rejected
// instead of re-applied.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// CatalogPort supplies catalog defaults for products the ledger does not
// track yet.
type CatalogPort interface {
	Defaults(ctx context.Context, companyID uuid.UUID, name string) (catalog.Product, error)
}

// stockLink is the tagged result of an inventory lookup that tolerates the
// product having no instance yet. Branches on it are explicit rather than
// nil-checked.
type stockLink struct {
	linked   bool
	instance inventory.Instance
}

func lookupStock(ctx context.Context, tx TxStore, companyID uuid.UUID, productName, location string) (stockLink, error) {
	inst, err := tx.GetInstanceForUpdate(ctx, companyID, productName, location)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return stockLink{}, nil
		}
		return stockLink{}, err
	}
	return stockLink{linked: true, instance: inst}, nil
}
