package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed queries for reports.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// periodFormats maps grouping periods to postgres to_char formats.
var periodFormats = map[string]string{
	PeriodDaily:   "YYYY-MM-DD",
	PeriodWeekly:  `IYYY-"W"IW`,
	PeriodMonthly: "YYYY-MM",
}

// SalesByPeriod groups sales into labelled buckets.
func (r *Repository) SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]PeriodBucket, error) {
	format, ok := periodFormats[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}

	query := `
		SELECT to_char(created_at, $1) AS bucket,
			COALESCE(SUM(total), 0),
			COALESCE(SUM(discount), 0),
			COUNT(*)
		FROM sales
		WHERE created_at >= $2 AND created_at < $3
		GROUP BY bucket
		ORDER BY bucket`

	rows, err := r.pool.Query(ctx, query, format, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []PeriodBucket
	for rows.Next() {
		var b PeriodBucket
		if err := rows.Scan(&b.Period, &b.TotalSales, &b.Discount, &b.SaleCount); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// TopProducts ranks products by units sold in the window.
func (r *Repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	query := `
		SELECT i.product_id, i.name,
			SUM(i.quantity) AS qty,
			SUM(i.price * i.quantity) AS revenue
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY i.product_id, i.name
		ORDER BY qty DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.QuantitySold, &p.Revenue); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListSaleTenders returns the total and payment field of sales in [from, to).
func (r *Repository) ListSaleTenders(ctx context.Context, from, to time.Time) ([]TenderRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT total, mop FROM sales WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []TenderRow
	for rows.Next() {
		var t TenderRow
		if err := rows.Scan(&t.Total, &t.MOP); err != nil {
			return nil, err
		}
		tenders = append(tenders, t)
	}
	return tenders, rows.Err()
}

// CountLowStock counts products at or below their low-stock threshold.
func (r *Repository) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE stock <= low_stock_threshold`,
	).Scan(&count)
	return count, err
}
