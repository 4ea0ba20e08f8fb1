package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gestix-erp/gestix/internal/sales"
	"github.com/gestix-erp/gestix/internal/shared"
)

type memoryRepo struct {
	customers map[uuid.UUID]Customer
}

func (m *memoryRepo) Get(ctx context.Context, companyID, id uuid.UUID) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	var out []Customer
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) Create(ctx context.Context, c Customer) (Customer, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.customers[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Update(ctx context.Context, c Customer) error {
	if _, ok := m.customers[c.ID]; !ok {
		return shared.ErrNotFound
	}
	m.customers[c.ID] = c
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if _, ok := m.customers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

type memorySales struct {
	sales []sales.Sale
}

func (m *memorySales) List(ctx context.Context, filter sales.ListFilter) ([]sales.Sale, int, error) {
	var out []sales.Sale
	for _, s := range m.sales {
		if filter.CustomerID != nil && (s.CustomerID == nil || *s.CustomerID != *filter.CustomerID) {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func TestHistoryTotals(t *testing.T) {
	repo := &memoryRepo{customers: map[uuid.UUID]Customer{}}
	companyID := uuid.New()
	customer, err := repo.Create(context.Background(), Customer{CompanyID: companyID, Name: "Maria Santos"})
	require.NoError(t, err)

	other := uuid.New()
	salesRepo := &memorySales{sales: []sales.Sale{
		{CustomerID: &customer.ID, TotalValue: 100, AmountPaid: 100, Status: sales.StatusPickedUp},
		{CustomerID: &customer.ID, TotalValue: 250, AmountPaid: 200, Status: sales.StatusPaid},
		{CustomerID: &other, TotalValue: 999, AmountPaid: 0},
	}}

	svc := NewService(repo, salesRepo)
	history, err := svc.History(context.Background(), companyID, customer.ID)
	require.NoError(t, err)
	require.Len(t, history.Sales, 2)
	require.Equal(t, 350.0, history.TotalSpent)
	require.Equal(t, 50.0, history.Outstanding)
}

func TestHistoryUnknownCustomer(t *testing.T) {
	svc := NewService(&memoryRepo{customers: map[uuid.UUID]Customer{}}, &memorySales{})
	_, err := svc.History(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(&memoryRepo{customers: map[uuid.UUID]Customer{}}, &memorySales{})
	_, err := svc.Create(context.Background(), Customer{Name: "   "})
	require.Error(t, err)
}
