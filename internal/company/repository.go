package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/shared"
)

// Repository reads company master data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads one company.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, currency, sale_counter, created_at FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Currency, &c.SaleCounter, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

// ListLocations returns the company's locations ordered by name.
func (r *Repository) ListLocations(ctx context.Context, companyID uuid.UUID) ([]Location, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name, created_at FROM locations WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.Name, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// CreateLocation registers a new stock-keeping site.
func (r *Repository) CreateLocation(ctx context.Context, companyID uuid.UUID, name string) (Location, error) {
	l := Location{ID: uuid.New(), CompanyID: companyID, Name: name}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO locations (id, company_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
		l.ID, l.CompanyID, l.Name).Scan(&l.CreatedAt)
	if err != nil {
		return Location{}, err
	}
	return l, nil
}
