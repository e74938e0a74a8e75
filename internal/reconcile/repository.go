package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// Repository provides PostgreSQL backed persistence for reconciliation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// GetStartingCash returns the opening float row for a date.
func (r *Repository) GetStartingCash(ctx context.Context, date time.Time) (*CashFloat, error) {
	var f CashFloat
	var setBy pgtype.Int8
	err := r.pool.QueryRow(ctx,
		`SELECT date, amount, set_by, updated_at FROM starting_cash WHERE date = $1`,
		date,
	).Scan(&f.Date, &f.Amount, &setBy, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.SetBy = setBy.Int64
	return &f, nil
}

// UpsertStartingCash writes the opening float, replacing any row for the date.
func (r *Repository) UpsertStartingCash(ctx context.Context, float CashFloat) (*CashFloat, error) {
	var setBy pgtype.Int8
	if float.SetBy > 0 {
		setBy = pgtype.Int8{Int64: float.SetBy, Valid: true}
	}
	var out CashFloat
	var outSetBy pgtype.Int8
	err := r.pool.QueryRow(ctx,
		`INSERT INTO starting_cash (date, amount, set_by, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (date) DO UPDATE SET amount = EXCLUDED.amount, set_by = EXCLUDED.set_by, updated_at = EXCLUDED.updated_at
		 RETURNING date, amount, set_by, updated_at`,
		float.Date, float.Amount, setBy, float.UpdatedAt,
	).Scan(&out.Date, &out.Amount, &outSetBy, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	out.SetBy = outSetBy.Int64
	return &out, nil
}

const reconciliationColumns = `id, date, starting_cash, cash_sales, non_cash_sales, total_sales,
	sale_count, total_expenses, expected_cash, actual_cash, cash_difference, notes, closed_by, created_at`

func scanReconciliation(row pgx.Row) (*Reconciliation, error) {
	var rec Reconciliation
	var notes pgtype.Text
	var closedBy pgtype.Int8
	err := row.Scan(
		&rec.ID, &rec.Date, &rec.StartingCash, &rec.CashSales, &rec.NonCashSales, &rec.TotalSales,
		&rec.SaleCount, &rec.TotalExpenses, &rec.ExpectedCash, &rec.ActualCash, &rec.CashDifference,
		&notes, &closedBy, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotClosed
	}
	if err != nil {
		return nil, err
	}
	rec.Notes = notes.String
	rec.ClosedBy = closedBy.Int64
	return &rec, nil
}

// InsertReconciliation stores a close record. The UNIQUE(date) constraint
// turns a second close of the same day into ErrAlreadyClosed.
func (r *Repository) InsertReconciliation(ctx context.Context, rec Reconciliation) (*Reconciliation, error) {
	var notes pgtype.Text
	if rec.Notes != "" {
		notes = pgtype.Text{String: rec.Notes, Valid: true}
	}
	var closedBy pgtype.Int8
	if rec.ClosedBy > 0 {
		closedBy = pgtype.Int8{Int64: rec.ClosedBy, Valid: true}
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO reconciliations (
			date, starting_cash, cash_sales, non_cash_sales, total_sales, sale_count,
			total_expenses, expected_cash, actual_cash, cash_difference, notes, closed_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+reconciliationColumns,
		rec.Date, rec.StartingCash, rec.CashSales, rec.NonCashSales, rec.TotalSales, rec.SaleCount,
		rec.TotalExpenses, rec.ExpectedCash, rec.ActualCash, rec.CashDifference,
		notes, closedBy, rec.CreatedAt,
	)
	out, err := scanReconciliation(row)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyClosed
	}
	return out, err
}

// GetReconciliationByDate returns the close record for one date.
func (r *Repository) GetReconciliationByDate(ctx context.Context, date time.Time) (*Reconciliation, error) {
	return scanReconciliation(r.pool.QueryRow(ctx,
		`SELECT `+reconciliationColumns+` FROM reconciliations WHERE date = $1`, date))
}

// ListReconciliations returns close records in [from, to], newest first.
func (r *Repository) ListReconciliations(ctx context.Context, from, to time.Time, limit int) ([]Reconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliations WHERE 1=1`
	args := []any{}
	argNum := 1

	if !from.IsZero() {
		query += ` AND date >= $1`
		args = append(args, from)
		argNum++
	}
	if !to.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d", argNum)
		args = append(args, to)
		argNum++
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// ListSaleTenders returns the total and payment field of sales in [from, to).
func (r *Repository) ListSaleTenders(ctx context.Context, from, to time.Time) ([]SaleTender, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT total, mop FROM sales WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []SaleTender
	for rows.Next() {
		var t SaleTender
		if err := rows.Scan(&t.Total, &t.MOP); err != nil {
			return nil, err
		}
		tenders = append(tenders, t)
	}
	return tenders, rows.Err()
}
