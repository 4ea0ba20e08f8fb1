package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gestix-erp/gestix/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	GetByName(ctx context.Context, companyID uuid.UUID, name string) (Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) error
	CountReferences(ctx context.Context, companyID uuid.UUID, name string) (int64, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	ListCategories(ctx context.Context, companyID uuid.UUID) ([]Category, error)
	CreateCategory(ctx context.Context, companyID uuid.UUID, name string) (Category, error)
}

// Service owns catalog reference data rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Defaults returns the catalog price/unit/threshold defaults for a product,
// used when ledgers create entries for a product with no stock instance yet.
func (s *Service) Defaults(ctx context.Context, companyID uuid.UUID, name string) (Product, error) {
	return s.repo.GetByName(ctx, companyID, name)
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// Create registers a new catalog product.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if p.Name == "" {
		return Product{}, errors.New("catalog: product name required")
	}
	if p.Price < 0 {
		return Product{}, errors.New("catalog: price must be >= 0")
	}
	if _, err := s.repo.GetByName(ctx, p.CompanyID, p.Name); err == nil {
		return Product{}, fmt.Errorf("catalog: product %q already exists", p.Name)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

// Update rewrites a product's defaults.
func (s *Service) Update(ctx context.Context, p Product) error {
	if p.Price < 0 {
		return errors.New("catalog: price must be >= 0")
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a product, refused while any ledger still references it.
func (s *Service) Delete(ctx context.Context, companyID uuid.UUID, name string) error {
	p, err := s.repo.GetByName(ctx, companyID, name)
	if err != nil {
		return err
	}
	refs, err := s.repo.CountReferences(ctx, companyID, name)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: product %q still referenced by %d records", shared.ErrInvalidState, name, refs)
	}
	return s.repo.Delete(ctx, companyID, p.ID)
}

// ListCategories returns the company's categories.
func (s *Service) ListCategories(ctx context.Context, companyID uuid.UUID) ([]Category, error) {
	return s.repo.ListCategories(ctx, companyID)
}

// CreateCategory registers a category.
func (s *Service) CreateCategory(ctx context.Context, companyID uuid.UUID, name string) (Category, error) {
	if name == "" {
		return Category{}, errors.New("catalog: category name required")
	}
	return s.repo.CreateCategory(ctx, companyID, name)
}
