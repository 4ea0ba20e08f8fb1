package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/gestix-erp/gestix/internal/sales"
	"github.com/gestix-erp/gestix/internal/shared"
)

// RepositoryPort is what the service needs from the customer register.
type RepositoryPort interface {
	Get(ctx context.Context, companyID, id uuid.UUID) (Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, c Customer) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

// SalesPort supplies the sales side of the history join.
type SalesPort interface {
	List(ctx context.Context, filter sales.ListFilter) ([]sales.Sale, int, error)
}

// Service assembles CRM views over the register and the sales ledger.
type Service struct {
	repo  RepositoryPort
	sales SalesPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort, salesRepo SalesPort) *Service {
	return &Service{repo: repo, sales: salesRepo}
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (Customer, error) {
	return s.repo.Get(ctx, companyID, id)
}

// List returns customers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	return s.repo.List(ctx, filter)
}

// Create validates and inserts a customer.
func (s *Service) Create(ctx context.Context, c Customer) (Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Customer{}, shared.ErrInvalidState
	}
	return s.repo.Create(ctx, c)
}

// Update rewrites a customer.
func (s *Service) Update(ctx context.Context, c Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return shared.ErrInvalidState
	}
	return s.repo.Update(ctx, c)
}

// Delete removes a customer from the register.
func (s *Service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return s.repo.Delete(ctx, companyID, id)
}

// History joins a customer with their sales, newest first. TotalSpent sums
// every document's total; Outstanding sums the unpaid remainders.
func (s *Service) History(ctx context.Context, companyID, customerID uuid.UUID) (History, error) {
	customer, err := s.repo.Get(ctx, companyID, customerID)
	if err != nil {
		return History{}, err
	}

	list, _, err := s.sales.List(ctx, sales.ListFilter{
		CompanyID:  companyID,
		CustomerID: &customerID,
	})
	if err != nil {
		return History{}, err
	}

	h := History{Customer: customer, Sales: list}
	for _, sale := range list {
		h.TotalSpent += sale.TotalValue
		h.Outstanding += sale.Outstanding()
	}
	return h, nil
}
