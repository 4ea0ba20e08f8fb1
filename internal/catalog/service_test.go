package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gestix-erp/gestix/internal/shared"
)

type memoryRepo struct {
	products   map[string]Product
	categories []Category
	references map[string]int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:   map[string]Product{},
		references: map[string]int64{},
	}
}

func (m *memoryRepo) GetByName(ctx context.Context, companyID uuid.UUID, name string) (Product, error) {
	p, ok := m.products[name]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryRepo) Create(ctx context.Context, p Product) (Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.products[p.Name] = p
	return p, nil
}

func (m *memoryRepo) Update(ctx context.Context, p Product) error {
	for name, existing := range m.products {
		if existing.ID == p.ID {
			p.Name = name
			m.products[name] = p
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memoryRepo) CountReferences(ctx context.Context, companyID uuid.UUID, name string) (int64, error) {
	return m.references[name], nil
}

func (m *memoryRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	for name, p := range m.products {
		if p.ID == id {
			delete(m.products, name)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memoryRepo) ListCategories(ctx context.Context, companyID uuid.UUID) ([]Category, error) {
	return m.categories, nil
}

func (m *memoryRepo) CreateCategory(ctx context.Context, companyID uuid.UUID, name string) (Category, error) {
	c := Category{ID: uuid.New(), CompanyID: companyID, Name: name}
	m.categories = append(m.categories, c)
	return c, nil
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	companyID := uuid.New()

	_, err := svc.Create(context.Background(), Product{CompanyID: companyID, Name: "Pão de Ló", Price: 12})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Product{CompanyID: companyID, Name: "Pão de Ló", Price: 15})
	require.Error(t, err)
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	companyID := uuid.New()

	_, err := svc.Create(context.Background(), Product{CompanyID: companyID, Name: "Bolo de Arroz", Price: 2})
	require.NoError(t, err)
	repo.references["Bolo de Arroz"] = 3

	err = svc.Delete(context.Background(), companyID, "Bolo de Arroz")
	require.True(t, errors.Is(err, shared.ErrInvalidState))

	repo.references["Bolo de Arroz"] = 0
	require.NoError(t, svc.Delete(context.Background(), companyID, "Bolo de Arroz"))

	_, err = svc.Defaults(context.Background(), companyID, "Bolo de Arroz")
	require.True(t, errors.Is(err, shared.ErrNotFound))
}
