package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/shared"
)

const customerColumns = `id, company_id, name, tax_number, phone, email, address, notes, created_at, updated_at`

// Repository reads and writes the customer register.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads one customer.
func (r *Repository) Get(ctx context.Context, companyID, id uuid.UUID) (Customer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 AND id = $2`, companyID, id)
	return scanCustomer(row)
}

// List returns customers matching the filter, alphabetically.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	conditions := "company_id = $1"
	args := []interface{}{filter.CompanyID}
	argPos := 2

	if filter.Search != "" {
		conditions += fmt.Sprintf(" AND name_folded LIKE $%d", argPos)
		args = append(args, "%"+shared.FoldSearch(filter.Search)+"%")
		argPos++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		customerColumns, conditions, argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Create inserts a customer.
func (r *Repository) Create(ctx context.Context, c Customer) (Customer, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (id, company_id, name, name_folded, tax_number, phone, email, address, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		c.ID, c.CompanyID, c.Name, shared.FoldSearch(c.Name), c.TaxNumber, c.Phone, c.Email, c.Address, c.Notes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

// Update rewrites the mutable customer fields.
func (r *Repository) Update(ctx context.Context, c Customer) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = $3, name_folded = $4, tax_number = $5, phone = $6,
		        email = $7, address = $8, notes = $9, updated_at = now()
		 WHERE company_id = $1 AND id = $2`,
		c.CompanyID, c.ID, c.Name, shared.FoldSearch(c.Name), c.TaxNumber, c.Phone, c.Email, c.Address, c.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a customer. Sales keep their snapshot clientName, so the
// history of past documents survives the deletion.
func (r *Repository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM customers WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxNumber, &c.Phone, &c.Email,
		&c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, shared.ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}
