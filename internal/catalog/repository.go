package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, barcode, category_id, price, cost, stock, low_stock_threshold, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var barcode pgtype.Text
	var categoryID pgtype.Int8
	err := row.Scan(
		&p.ID, &p.Name, &barcode, &categoryID, &p.Price, &p.Cost,
		&p.Stock, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Barcode = barcode.String
	p.CategoryID = categoryID.Int64
	return &p, nil
}

// CreateProduct inserts a new product.
func (r *Repository) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	query := `
		INSERT INTO products (name, barcode, category_id, price, cost, stock, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query,
		input.Name,
		textOrNull(input.Barcode),
		int8OrNull(input.CategoryID),
		input.Price,
		input.Cost,
		input.Stock,
		input.LowStockThreshold,
	)
	return scanProduct(row)
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

// GetProductByBarcode retrieves a product by its barcode.
func (r *Repository) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`
	return scanProduct(r.pool.QueryRow(ctx, query, barcode))
}

// ListProducts returns products with optional filtering.
func (r *Repository) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`

	args := []any{}
	argNum := 1

	if req.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR barcode = $%d)", argNum, argNum+1)
		args = append(args, "%"+req.Search+"%", req.Search)
		argNum += 2
	}
	if req.CategoryID > 0 {
		query += fmt.Sprintf(" AND category_id = $%d", argNum)
		args = append(args, req.CategoryID)
		argNum++
	}
	if req.LowStockOnly {
		query += " AND stock <= low_stock_threshold"
	}

	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// UpdateProduct replaces product attributes.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	query := `
		UPDATE products
		SET name = $2, barcode = $3, category_id = $4, price = $5, cost = $6,
			stock = $7, low_stock_threshold = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query,
		id,
		input.Name,
		textOrNull(input.Barcode),
		int8OrNull(input.CategoryID),
		input.Price,
		input.Cost,
		input.Stock,
		input.LowStockThreshold,
	)
	return scanProduct(row)
}

// DeleteProduct removes a product row.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// CountSaleItemsByProduct counts sale line items referencing a product.
func (r *Repository) CountSaleItemsByProduct(ctx context.Context, productID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sale_items WHERE product_id = $1`,
		productID,
	).Scan(&count)
	return count, err
}

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, created_at) VALUES ($1, NOW()) RETURNING id, name, created_at`,
		name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category row.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CountProductsByCategory counts products assigned to a category.
func (r *Repository) CountProductsByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`,
		categoryID,
	).Scan(&count)
	return count, err
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func int8OrNull(v int64) pgtype.Int8 {
	return pgtype.Int8{Int64: v, Valid: v > 0}
}
