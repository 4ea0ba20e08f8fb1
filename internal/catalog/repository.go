package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/shared"
)

// Repository persists catalog reference data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByName loads a product by its company-unique name.
func (r *Repository) GetByName(ctx context.Context, companyID uuid.UUID, name string) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, category, price, unit, low_stock_threshold, critical_stock_threshold, created_at, updated_at
		 FROM products WHERE company_id = $1 AND name = $2`, companyID, name).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Unit,
			&p.LowStockThreshold, &p.CriticalStockThreshold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// List returns products, optionally filtered by category and a folded search
// term matched against name_folded.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	conditions := []string{"company_id = $1"}
	args := []interface{}{filter.CompanyID}
	argPos := 2

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, filter.Category)
		argPos++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name_folded LIKE $%d", argPos))
		args = append(args, "%"+shared.FoldSearch(filter.Search)+"%")
		argPos++
	}

	where := conditions[0]
	for i := 1; i < len(conditions); i++ {
		where += " AND " + conditions[i]
	}

	query := fmt.Sprintf(`SELECT id, company_id, name, category, price, unit, low_stock_threshold, critical_stock_threshold, created_at, updated_at
		FROM products WHERE %s ORDER BY name`, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Unit,
			&p.LowStockThreshold, &p.CriticalStockThreshold, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create inserts a product; the company-unique name constraint surfaces as an error.
func (r *Repository) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (id, company_id, name, name_folded, category, price, unit, low_stock_threshold, critical_stock_threshold)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		p.ID, p.CompanyID, p.Name, shared.FoldSearch(p.Name), p.Category, p.Price, p.Unit,
		p.LowStockThreshold, p.CriticalStockThreshold).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Update rewrites mutable product fields.
func (r *Repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET category = $3, price = $4, unit = $5, low_stock_threshold = $6, critical_stock_threshold = $7, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2`,
		p.ID, p.CompanyID, p.Category, p.Price, p.Unit, p.LowStockThreshold, p.CriticalStockThreshold)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountReferences reports how many ledger rows still reference the product name.
func (r *Repository) CountReferences(ctx context.Context, companyID uuid.UUID, name string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM inventory_instances WHERE company_id = $1 AND product_name = $2) +
			(SELECT COUNT(*) FROM sales WHERE company_id = $1 AND product_name = $2) +
			(SELECT COUNT(*) FROM orders WHERE company_id = $1 AND product_name = $2)`,
		companyID, name).Scan(&count)
	return count, err
}

// Delete removes an unreferenced product.
func (r *Repository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListCategories returns the company's categories.
func (r *Repository) ListCategories(ctx context.Context, companyID uuid.UUID) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name, created_at FROM categories WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, companyID uuid.UUID, name string) (Category, error) {
	c := Category{ID: uuid.New(), CompanyID: companyID, Name: name}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (id, company_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
		c.ID, c.CompanyID, c.Name).Scan(&c.CreatedAt)
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// ListFilter filters product listings.
type ListFilter struct {
	CompanyID uuid.UUID
	Category  string
	Search    string
}
