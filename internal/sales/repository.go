package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const saleColumns = `id, total, discount, mop, customer_name, cashier_id, created_at, updated_at`

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var customerName pgtype.Text
	var cashierID pgtype.Int8
	err := row.Scan(&s.ID, &s.Total, &s.Discount, &s.MOP, &customerName, &cashierID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	s.CustomerName = customerName.String
	s.CashierID = cashierID.Int64
	return &s, nil
}

// GetSale retrieves a sale with its items.
func (r *Repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := listSaleItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

// ListSales returns sales with optional date filtering, newest first.
func (r *Repository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`

	args := []any{}
	argNum := 1

	if !req.From.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, req.From)
		argNum++
	}
	if !req.To.IsZero() {
		query += fmt.Sprintf(" AND created_at < $%d", argNum)
		args = append(args, req.To)
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		items, err := listSaleItems(ctx, r.pool, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listSaleItems(ctx context.Context, q queryer, saleID int64) ([]SaleItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, sale_id, product_id, name, price, quantity FROM sale_items WHERE sale_id = $1 ORDER BY id`,
		saleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type txRepo struct {
	tx pgx.Tx
}

// GetProductForUpdate locks the product row for the rest of the transaction.
func (t *txRepo) GetProductForUpdate(ctx context.Context, productID int64) (*SaleProduct, error) {
	var p SaleProduct
	err := t.tx.QueryRow(ctx,
		`SELECT id, name, price, stock FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *txRepo) AdjustProductStock(ctx context.Context, productID int64, delta int) error {
	result, err := t.tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		productID, delta,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (t *txRepo) InsertSale(ctx context.Context, sale *Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales (total, discount, mop, customer_name, cashier_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		sale.Total, sale.Discount, sale.MOP, textOrNull(sale.CustomerName), int8OrNull(sale.CashierID), sale.CreatedAt, sale.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (t *txRepo) InsertSaleItems(ctx context.Context, saleID int64, items []SaleItem) error {
	for _, item := range items {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO sale_items (sale_id, product_id, name, price, quantity) VALUES ($1, $2, $3, $4, $5)`,
			saleID, item.ProductID, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) GetSaleForUpdate(ctx context.Context, saleID int64) (*Sale, error) {
	return scanSale(t.tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, saleID))
}

func (t *txRepo) GetSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	return listSaleItems(ctx, t.tx, saleID)
}

func (t *txRepo) DeleteSaleItems(ctx context.Context, saleID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
	return err
}

func (t *txRepo) UpdateSale(ctx context.Context, sale *Sale) error {
	result, err := t.tx.Exec(ctx,
		`UPDATE sales SET total = $2, discount = $3, mop = $4, updated_at = $5 WHERE id = $1`,
		sale.ID, sale.Total, sale.Discount, sale.MOP, sale.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (t *txRepo) DeleteSale(ctx context.Context, saleID int64) error {
	result, err := t.tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (t *txRepo) InsertMovement(ctx context.Context, movement StockMovement) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO inventory_movements (product_id, change, reason, sale_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		movement.ProductID, movement.Change, movement.Reason, int8OrNull(movement.SaleID), movement.CreatedAt,
	)
	return err
}

func int8OrNull(v int64) pgtype.Int8 {
	return pgtype.Int8{Int64: v, Valid: v > 0}
}

func textOrNull(v string) pgtype.Text {
	return pgtype.Text{String: v, Valid: v != ""}
}
