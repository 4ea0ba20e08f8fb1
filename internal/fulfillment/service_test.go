package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gestix-erp/gestix/internal/catalog"
	"github.com/gestix-erp/gestix/internal/inventory"
	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/production"
	"github.com/gestix-erp/gestix/internal/sales"
	"github.com/gestix-erp/gestix/internal/shared"
)

// memoryStore serialises transactions with a mutex, mirroring the atomicity
// the real store gets from the database.
type memoryStore struct {
	mu          sync.Mutex
	instances   map[uuid.UUID]inventory.Instance
	sales       map[uuid.UUID]sales.Sale
	orders      map[uuid.UUID]orders.Order
	logs        map[uuid.UUID][]orders.ProductionLog
	productions map[uuid.UUID]production.Production
	counters    map[uuid.UUID]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		instances:   make(map[uuid.UUID]inventory.Instance),
		sales:       make(map[uuid.UUID]sales.Sale),
		orders:      make(map[uuid.UUID]orders.Order),
		logs:        make(map[uuid.UUID][]orders.ProductionLog),
		productions: make(map[uuid.UUID]production.Production),
		counters:    make(map[uuid.UUID]int64),
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.clone()
	if err := fn(ctx, &memoryTx{store: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memoryStore) clone() *memoryStore {
	c := newMemoryStore()
	for k, v := range m.instances {
		c.instances[k] = v
	}
	for k, v := range m.sales {
		c.sales[k] = v
	}
	for k, v := range m.orders {
		c.orders[k] = v
	}
	for k, v := range m.logs {
		c.logs[k] = append([]orders.ProductionLog(nil), v...)
	}
	for k, v := range m.productions {
		c.productions[k] = v
	}
	for k, v := range m.counters {
		c.counters[k] = v
	}
	return c
}

func (m *memoryStore) restore(s *memoryStore) {
	m.instances = s.instances
	m.sales = s.sales
	m.orders = s.orders
	m.logs = s.logs
	m.productions = s.productions
	m.counters = s.counters
}

type memoryTx struct {
	store *memoryStore
}

func (t *memoryTx) GetInstanceForUpdate(ctx context.Context, companyID uuid.UUID, productName, location string) (inventory.Instance, error) {
	for _, inst := range t.store.instances {
		if inst.CompanyID == companyID && inst.ProductName == productName && inst.Location == location {
			return inst, nil
		}
	}
	return inventory.Instance{}, shared.ErrNotFound
}

func (t *memoryTx) GetInstanceByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (inventory.Instance, error) {
	inst, ok := t.store.instances[id]
	if !ok || inst.CompanyID != companyID {
		return inventory.Instance{}, shared.ErrNotFound
	}
	return inst, nil
}

func (t *memoryTx) InsertInstance(ctx context.Context, inst inventory.Instance) error {
	t.store.instances[inst.ID] = inst
	return nil
}

func (t *memoryTx) UpdateInstanceStock(ctx context.Context, id uuid.UUID, stock, reservedStock float64) error {
	inst, ok := t.store.instances[id]
	if !ok {
		return shared.ErrNotFound
	}
	inst.Stock = stock
	inst.ReservedStock = reservedStock
	inst.LastUpdated = time.Now()
	t.store.instances[id] = inst
	return nil
}

func (t *memoryTx) NextGuideSequence(ctx context.Context, companyID uuid.UUID) (int64, error) {
	t.store.counters[companyID]++
	return t.store.counters[companyID], nil
}

func (t *memoryTx) InsertSale(ctx context.Context, s sales.Sale) error {
	t.store.sales[s.ID] = s
	return nil
}

func (t *memoryTx) GetSaleForUpdate(ctx context.Context, companyID, id uuid.UUID) (sales.Sale, error) {
	s, ok := t.store.sales[id]
	if !ok || s.CompanyID != companyID {
		return sales.Sale{}, shared.ErrNotFound
	}
	return s, nil
}

func (t *memoryTx) UpdateSaleStatus(ctx context.Context, id uuid.UUID, status sales.Status) error {
	s, ok := t.store.sales[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.Status = status
	t.store.sales[id] = s
	return nil
}

func (t *memoryTx) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.store.sales[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.store.sales, id)
	return nil
}

func (t *memoryTx) InsertOrder(ctx context.Context, o orders.Order) error {
	t.store.orders[o.ID] = o
	return nil
}

func (t *memoryTx) GetOrderForUpdate(ctx context.Context, companyID, id uuid.UUID) (orders.Order, error) {
	o, ok := t.store.orders[id]
	if !ok || o.CompanyID != companyID {
		return orders.Order{}, shared.ErrNotFound
	}
	return o, nil
}

func (t *memoryTx) UpdateOrderProgress(ctx context.Context, id uuid.UUID, status orders.Status, quantityProduced float64, productionStart *time.Time) error {
	o, ok := t.store.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	o.QuantityProduced = quantityProduced
	o.ProductionStartDate = productionStart
	t.store.orders[id] = o
	return nil
}

func (t *memoryTx) AppendProductionLog(ctx context.Context, log orders.ProductionLog) error {
	t.store.logs[log.OrderID] = append(t.store.logs[log.OrderID], log)
	return nil
}

func (t *memoryTx) InsertProduction(ctx context.Context, p production.Production) error {
	t.store.productions[p.ID] = p
	return nil
}

func (t *memoryTx) GetProductionForUpdate(ctx context.Context, companyID, id uuid.UUID) (production.Production, error) {
	p, ok := t.store.productions[id]
	if !ok || p.CompanyID != companyID {
		return production.Production{}, shared.ErrNotFound
	}
	return p, nil
}

func (t *memoryTx) UpdateProductionStatus(ctx context.Context, id uuid.UUID, status production.Status) error {
	p, ok := t.store.productions[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = status
	t.store.productions[id] = p
	return nil
}

var companyID = uuid.MustParse("6f1c0d5e-8c2a-4b38-9b4e-2f9a51c7d301")

func seedInstance(store *memoryStore, product string, stock, reserved float64) inventory.Instance {
	inst := inventory.Instance{
		ID:            uuid.New(),
		CompanyID:     companyID,
		ProductName:   product,
		Location:      "loja",
		Stock:         stock,
		ReservedStock: reserved,
		Price:         150,
		Unit:          "un",
	}
	store.instances[inst.ID] = inst
	return inst
}

func requireInvariant(t *testing.T, store *memoryStore) {
	t.Helper()
	for _, inst := range store.instances {
		require.GreaterOrEqual(t, inst.ReservedStock, 0.0)
		require.GreaterOrEqual(t, inst.Stock, inst.ReservedStock,
			"reservedStock must not exceed stock for %s", inst.ProductName)
	}
}

func TestCreateSaleReservesStock(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 4, PickupLater: true, ClientName: "Ana",
	})
	require.NoError(t, err)
	require.Equal(t, sales.StatusPaid, res.Sale.Status)
	require.Equal(t, "VND-000001", res.Sale.GuideNumber)
	require.InDelta(t, 600, res.Sale.TotalValue, 0.001) // instance price 150 x 4

	got := store.instances[inst.ID]
	require.InDelta(t, 10, got.Stock, 0.001)
	require.InDelta(t, 4, got.ReservedStock, 0.001)
	requireInvariant(t, store)
}

func TestCreateSalePOSConsumesImmediately(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	svc := NewService(store, nil, nil, nil, nil)

	res, err := svc.CreateSale(context.Background(), CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja", Quantity: 3,
	})
	require.NoError(t, err)
	require.Equal(t, sales.StatusPickedUp, res.Sale.Status)

	got := store.instances[inst.ID]
	require.InDelta(t, 7, got.Stock, 0.001)
	require.InDelta(t, 0, got.ReservedStock, 0.001)
	requireInvariant(t, store)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	store := newMemoryStore()
	seedInstance(store, "pão", 10, 8)
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 3, PickupLater: true,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Empty(t, store.sales)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		CompanyID: companyID, ProductName: "bolo", Location: "loja",
		Quantity: 1, PickupLater: true,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

// No oversell under concurrency: combined requested quantity exceeds the
// available stock, so at most the available total may end up reserved.
func TestConcurrentSalesDoNotOversell(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	svc := NewService(store, nil, nil, nil, nil)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := svc.CreateSale(context.Background(), CreateSaleInput{
				CompanyID: companyID, ProductName: "pão", Location: "loja",
				Quantity: 3, PickupLater: true,
			})
			if err != nil && !errors.Is(err, shared.ErrInsufficientStock) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	got := store.instances[inst.ID]
	require.LessOrEqual(t, got.ReservedStock, got.Stock)
	require.InDelta(t, 9, got.ReservedStock, 0.001) // 3 of 8 attempts fit into 10
	require.Len(t, store.sales, 3)
	requireInvariant(t, store)
}

// Reservation/release symmetry: CreateSale then DeleteSale restores
// reservedStock; stock never moves.
func TestDeleteSaleReleasesReservation(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 10, PickupLater: true,
	})
	require.NoError(t, err)

	// available is now zero; a concurrent checkout must fail
	_, err = svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 1, PickupLater: true,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	del, err := svc.DeleteSale(ctx, companyID, res.Sale.ID, "tester")
	require.NoError(t, err)
	require.InDelta(t, 10, del.ReleasedQuantity, 0.001)

	got := store.instances[inst.ID]
	require.InDelta(t, 10, got.Stock, 0.001)
	require.InDelta(t, 0, got.ReservedStock, 0.001)
	require.Empty(t, store.sales)
	requireInvariant(t, store)
}

// Pickup consumption: stock drops by the sale quantity, reserved returns to
// its pre-sale baseline.
func TestConfirmPickupConsumesStock(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 4, PickupLater: true,
	})
	require.NoError(t, err)

	pickup, err := svc.ConfirmPickup(ctx, companyID, res.Sale.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, sales.StatusPickedUp, pickup.Sale.Status)

	got := store.instances[inst.ID]
	require.InDelta(t, 6, got.Stock, 0.001)
	require.InDelta(t, 0, got.ReservedStock, 0.001)
	requireInvariant(t, store)

	// idempotent guard
	_, err = svc.ConfirmPickup(ctx, companyID, res.Sale.ID, "tester")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestDeletePickedUpSaleDoesNotRestock(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja", Quantity: 4,
	})
	require.NoError(t, err)

	del, err := svc.DeleteSale(ctx, companyID, res.Sale.ID, "tester")
	require.NoError(t, err)
	require.Zero(t, del.ReleasedQuantity)

	got := store.instances[inst.ID]
	require.InDelta(t, 6, got.Stock, 0.001)
}

// Guide numbering: N calls yield N strictly increasing sequence values with
// no gaps or repeats, even concurrently, shared across sales and orders.
func TestGuideNumbersAreGapFree(t *testing.T) {
	store := newMemoryStore()
	seedInstance(store, "pão", 1000, 0)
	svc := NewService(store, nil, nil, nil, nil)

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		even := i%2 == 0
		g.Go(func() error {
			if even {
				_, err := svc.CreateSale(context.Background(), CreateSaleInput{
					CompanyID: companyID, ProductName: "pão", Location: "loja",
					Quantity: 1, PickupLater: true,
				})
				return err
			}
			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				CompanyID: companyID, ProductName: "pão", Location: "loja",
				Quantity: 1, ClientName: "Rui",
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]bool)
	for _, s := range store.sales {
		require.False(t, seen[s.GuideNumber], "duplicate guide %s", s.GuideNumber)
		seen[s.GuideNumber] = true
	}
	require.Len(t, seen, 10)
	require.EqualValues(t, 10, store.counters[companyID])
}

func TestCreateOrderReservesAndLinksSale(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "bolo", 20, 0)
	svc := NewService(store, nil, nil, nil, nil)

	res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CompanyID: companyID, ProductName: "bolo", Location: "loja",
		Quantity: 5, UnitPrice: 200, ClientName: "Rui",
	})
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Equal(t, orders.StatusPending, res.Order.Status)
	require.Zero(t, res.Order.QuantityProduced)
	require.Equal(t, sales.DocumentTypeOrder, res.Sale.DocumentType)
	require.Equal(t, res.Order.GuideNumber, res.Sale.GuideNumber)
	require.Equal(t, "ENC-000001", res.Order.GuideNumber)
	require.Equal(t, res.Order.ID, *res.Sale.OrderID)

	got := store.instances[inst.ID]
	require.InDelta(t, 5, got.ReservedStock, 0.001)
	requireInvariant(t, store)
}

func TestCreateOrderWithoutInstanceSkipsReservation(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil, nil, nil, nil)

	res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CompanyID: companyID, ProductName: "encomenda especial", Location: "loja",
		Quantity: 3, UnitPrice: 500, ClientName: "Rui",
	})
	require.NoError(t, err)
	require.Contains(t, res.Warnings, shared.WarnProductNotInStock)
	require.Len(t, store.orders, 1)
	require.Len(t, store.sales, 1)
	require.Empty(t, store.instances)
}

// Order completion gating plus the shortfall auto-production path.
func TestAutoCompleteProduction(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "bolo", 20, 0)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.CreateOrder(ctx, CreateOrderInput{
		CompanyID: companyID, ProductName: "bolo", Location: "loja",
		Quantity: 20, UnitPrice: 200, ClientName: "Rui",
	})
	require.NoError(t, err)
	orderID := res.Order.ID

	_, err = svc.UpdateOrderStatus(ctx, companyID, orderID, orders.StatusInProduction, "tester")
	require.NoError(t, err)

	// simulate partial production having been registered
	o := store.orders[orderID]
	o.QuantityProduced = 12
	store.orders[orderID] = o

	// completion refused while production is short
	_, err = svc.UpdateOrderStatus(ctx, companyID, orderID, orders.StatusCompleted, "tester")
	require.ErrorIs(t, err, shared.ErrInvalidState)

	auto, err := svc.AutoCompleteProduction(ctx, companyID, orderID, "tester")
	require.NoError(t, err)
	require.Equal(t, orders.StatusCompleted, auto.Order.Status)
	require.InDelta(t, 20, auto.Order.QuantityProduced, 0.001)
	require.NotNil(t, auto.Production)
	require.InDelta(t, 8, auto.Production.Quantity, 0.001)
	require.Equal(t, production.StatusDone, auto.Production.Status)
	require.Equal(t, orderID, *auto.Production.OrderID)
	require.Len(t, store.logs[orderID], 1)
	require.InDelta(t, 8, store.logs[orderID][0].Quantity, 0.001)

	// newly manufactured quantity is added to stock, not reserved
	got := store.instances[inst.ID]
	require.InDelta(t, 28, got.Stock, 0.001)
	require.InDelta(t, 20, got.ReservedStock, 0.001)
	requireInvariant(t, store)

	// completing again is refused
	_, err = svc.AutoCompleteProduction(ctx, companyID, orderID, "tester")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestAutoCompleteWithoutInstanceWarns(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.CreateOrder(ctx, CreateOrderInput{
		CompanyID: companyID, ProductName: "encomenda especial", Location: "loja",
		Quantity: 6, UnitPrice: 100, ClientName: "Rui",
	})
	require.NoError(t, err)

	auto, err := svc.AutoCompleteProduction(ctx, companyID, res.Order.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, orders.StatusCompleted, auto.Order.Status)
	require.Contains(t, auto.Warnings, shared.WarnProductNotInStock)
	require.Empty(t, store.instances)
}

func TestTransferProduction(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "bolo", 5, 0)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.RegisterProduction(ctx, RegisterProductionInput{
		CompanyID: companyID, ProductName: "bolo", Location: "loja",
		Quantity: 7, Unit: "un", RegisteredBy: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, production.StatusDone, res.Production.Status)
	// registering production alone does not touch inventory
	require.InDelta(t, 5, store.instances[inst.ID].Stock, 0.001)

	prod, err := svc.TransferProduction(ctx, companyID, res.Production.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, production.StatusTransferred, prod.Status)
	require.InDelta(t, 12, store.instances[inst.ID].Stock, 0.001)

	// terminal: no second transfer
	_, err = svc.TransferProduction(ctx, companyID, res.Production.ID, "tester")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestRegisterProductionTransferNow(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil, nil, nil, nil)

	res, err := svc.RegisterProduction(context.Background(), RegisterProductionInput{
		CompanyID: companyID, ProductName: "bolo", Location: "fábrica",
		Quantity: 9, Unit: "un", RegisteredBy: "tester", TransferNow: true,
	})
	require.NoError(t, err)
	require.Equal(t, production.StatusTransferred, res.Production.Status)

	require.Len(t, store.instances, 1)
	for _, inst := range store.instances {
		require.InDelta(t, 9, inst.Stock, 0.001)
		require.Equal(t, "fábrica", inst.Location)
	}
}

func TestAuditStockOverwritesAndFlagsAnomaly(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 6)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	res, err := svc.AuditStock(ctx, AuditStockInput{
		CompanyID: companyID, InstanceID: inst.ID, PhysicalCount: 8, Reason: "contagem mensal",
	})
	require.NoError(t, err)
	require.InDelta(t, -2, res.Adjustment, 0.001)
	require.Empty(t, res.Warnings)
	require.InDelta(t, 6, store.instances[inst.ID].ReservedStock, 0.001)

	// counting below outstanding reservations is permitted but flagged
	res, err = svc.AuditStock(ctx, AuditStockInput{
		CompanyID: companyID, InstanceID: inst.ID, PhysicalCount: 4, Reason: "quebra",
	})
	require.NoError(t, err)
	require.Contains(t, res.Warnings, shared.WarnStockBelowReservations)
	require.InDelta(t, 4, store.instances[inst.ID].Stock, 0.001)
	require.InDelta(t, 6, store.instances[inst.ID].ReservedStock, 0.001)
}

// Transfer atomicity: either both sides move or neither does.
func TestTransferStock(t *testing.T) {
	store := newMemoryStore()
	src := seedInstance(store, "pão", 10, 4)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	// reserved stock may not travel: available is 6
	err := svc.TransferStock(ctx, TransferStockInput{
		CompanyID: companyID, ProductName: "pão",
		FromLocation: "loja", ToLocation: "armazém", Quantity: 7,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.InDelta(t, 10, store.instances[src.ID].Stock, 0.001)
	require.Len(t, store.instances, 1)

	err = svc.TransferStock(ctx, TransferStockInput{
		CompanyID: companyID, ProductName: "pão",
		FromLocation: "loja", ToLocation: "armazém", Quantity: 6,
	})
	require.NoError(t, err)
	require.InDelta(t, 4, store.instances[src.ID].Stock, 0.001)
	require.Len(t, store.instances, 2)
	for id, inst := range store.instances {
		if id == src.ID {
			continue
		}
		require.Equal(t, "armazém", inst.Location)
		require.InDelta(t, 6, inst.Stock, 0.001)
		require.InDelta(t, 150, inst.Price, 0.001) // metadata copied from source
	}
	requireInvariant(t, store)
}

// Scenario from the acceptance checklist: full reservation, concurrent
// rejection, then release restoring availability.
func TestReserveAllThenRelease(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	first, err := svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 10, PickupLater: true,
	})
	require.NoError(t, err)
	require.InDelta(t, 0, store.instances[inst.ID].Available(), 0.001)

	_, err = svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 1, PickupLater: true,
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = svc.DeleteSale(ctx, companyID, first.Sale.ID, "tester")
	require.NoError(t, err)
	require.InDelta(t, 10, store.instances[inst.ID].Available(), 0.001)
}

// memoryCatalog serves product defaults from a fixed name map.
type memoryCatalog struct {
	products map[string]catalog.Product
}

func (m *memoryCatalog) Defaults(_ context.Context, _ uuid.UUID, name string) (catalog.Product, error) {
	p, ok := m.products[name]
	if !ok {
		return catalog.Product{}, shared.ErrNotFound
	}
	return p, nil
}

func TestCreateOrderUsesCatalogDefaultPrice(t *testing.T) {
	store := newMemoryStore()
	cat := &memoryCatalog{products: map[string]catalog.Product{
		"bolo de noiva": {Name: "bolo de noiva", Price: 320, Unit: "un"},
	}}
	svc := NewService(store, nil, nil, cat, nil)

	// untracked product, no price on the request: the catalog default applies
	res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CompanyID: companyID, ProductName: "bolo de noiva", Location: "loja",
		Quantity: 2, ClientName: "Rui",
	})
	require.NoError(t, err)
	require.Contains(t, res.Warnings, shared.WarnProductNotInStock)
	require.InDelta(t, 320, res.Order.UnitPrice, 0.001)
	require.InDelta(t, 640, res.Order.TotalValue, 0.001)
	require.InDelta(t, 640, res.Sale.TotalValue, 0.001)

	// a product in neither the ledger nor the catalog still orders, at zero
	res, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		CompanyID: companyID, ProductName: "encomenda avulsa", Location: "loja",
		Quantity: 1, ClientName: "Rui",
	})
	require.NoError(t, err)
	require.Zero(t, res.Order.UnitPrice)

	// an explicit price always wins over the catalog default
	res, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		CompanyID: companyID, ProductName: "bolo de noiva", Location: "loja",
		Quantity: 1, UnitPrice: 400, ClientName: "Rui",
	})
	require.NoError(t, err)
	require.InDelta(t, 400, res.Order.UnitPrice, 0.001)
}

func TestCreateOrderLinkedZeroPriceFallsBackToCatalog(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	inst.Price = 0
	store.instances[inst.ID] = inst
	cat := &memoryCatalog{products: map[string]catalog.Product{
		"pão": {Name: "pão", Price: 1.5, Unit: "un"},
	}}
	svc := NewService(store, nil, nil, cat, nil)

	res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 4, ClientName: "Rui",
	})
	require.NoError(t, err)
	require.InDelta(t, 1.5, res.Order.UnitPrice, 0.001)
	require.InDelta(t, 4, store.instances[inst.ID].ReservedStock, 0.001)
}

// memoryIdempotency mirrors the keyed-insert semantics of the persistent
// store: first insert wins, repeats conflict.
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: make(map[string]string)}
}

func (m *memoryIdempotency) CheckAndInsert(_ context.Context, key, module string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = module
	return nil
}

func (m *memoryIdempotency) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func TestCreateSaleDuplicateSubmissionRejected(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 0)
	idem := newMemoryIdempotency()
	svc := NewService(store, nil, idem, nil, nil)
	ctx := context.Background()

	input := CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 3, PickupLater: true, IdempotencyKey: "req-0001",
	}
	_, err := svc.CreateSale(ctx, input)
	require.NoError(t, err)

	// the retried submission must not reserve a second time
	_, err = svc.CreateSale(ctx, input)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.Len(t, store.sales, 1)
	require.InDelta(t, 3, store.instances[inst.ID].ReservedStock, 0.001)
}

func TestFailedSaleReleasesIdempotencyKey(t *testing.T) {
	store := newMemoryStore()
	seedInstance(store, "pão", 5, 0)
	idem := newMemoryIdempotency()
	svc := NewService(store, nil, idem, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 8, IdempotencyKey: "req-0002",
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	// the key was freed on failure, so a corrected retry goes through
	_, err = svc.CreateSale(ctx, CreateSaleInput{
		CompanyID: companyID, ProductName: "pão", Location: "loja",
		Quantity: 5, IdempotencyKey: "req-0002",
	})
	require.NoError(t, err)
	require.Len(t, store.sales, 1)
}

func TestCreateOrderDuplicateSubmissionRejected(t *testing.T) {
	store := newMemoryStore()
	seedInstance(store, "bolo", 20, 0)
	idem := newMemoryIdempotency()
	svc := NewService(store, nil, idem, nil, nil)
	ctx := context.Background()

	input := CreateOrderInput{
		CompanyID: companyID, ProductName: "bolo", Location: "loja",
		Quantity: 5, UnitPrice: 200, ClientName: "Rui", IdempotencyKey: "req-0003",
	}
	_, err := svc.CreateOrder(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, input)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.Len(t, store.orders, 1)
	require.Len(t, store.sales, 1)
}
