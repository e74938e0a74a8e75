package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
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

// ListMovements returns movement history joined with product names.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	query := `
		SELECT m.id, m.product_id, COALESCE(p.name, ''), m.change, m.reason, m.sale_id, m.created_at
		FROM inventory_movements m
		LEFT JOIN products p ON p.id = m.product_id
		WHERE 1=1`

	args := []any{}
	argNum := 1

	if filter.ProductID > 0 {
		query += fmt.Sprintf(" AND m.product_id = $%d", argNum)
		args = append(args, filter.ProductID)
		argNum++
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND m.created_at >= $%d", argNum)
		args = append(args, filter.From)
		argNum++
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND m.created_at < $%d", argNum)
		args = append(args, filter.To)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT $%d", argNum)
	args = append(args, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		var saleID pgtype.Int8
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.Change, &m.Reason, &saleID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.SaleID = saleID.Int64
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

type txRepo struct {
	tx pgx.Tx
}

func (t *txRepo) GetStockForUpdate(ctx context.Context, productID int64) (int, error) {
	var stock int
	err := t.tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	return stock, err
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

func (t *txRepo) InsertMovement(ctx context.Context, movement Movement) error {
	var saleID pgtype.Int8
	if movement.SaleID > 0 {
		saleID = pgtype.Int8{Int64: movement.SaleID, Valid: true}
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO inventory_movements (product_id, change, reason, sale_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		movement.ProductID, movement.Change, movement.Reason, saleID, movement.CreatedAt,
	)
	return err
}
