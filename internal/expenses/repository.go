package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for expenses.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindOrCreateType looks an expense type up by name, inserting it when absent.
// Matching is case-insensitive so "Utilities" and "utilities" share a bucket.
func (r *Repository) FindOrCreateType(ctx context.Context, name string) (*ExpenseType, error) {
	var t ExpenseType
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM expense_types WHERE LOWER(name) = LOWER($1)`, name,
	).Scan(&t.ID, &t.Name)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO expense_types (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name`,
		name,
	).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTypes returns all expense types ordered by name.
func (r *Repository) ListTypes(ctx context.Context) ([]ExpenseType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM expense_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []ExpenseType
	for rows.Next() {
		var t ExpenseType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

const expenseColumns = `e.id, e.type_id, t.name, e.amount, e.note, e.spent_at, e.created_at`

func scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	var note pgtype.Text
	err := row.Scan(&e.ID, &e.TypeID, &e.TypeName, &e.Amount, &note, &e.SpentAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Note = note.String
	return &e, nil
}

// CreateExpense inserts a new expense.
func (r *Repository) CreateExpense(ctx context.Context, typeID int64, input ExpenseInput) (*Expense, error) {
	query := `
		WITH inserted AS (
			INSERT INTO expenses (type_id, amount, note, spent_at, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING id, type_id, amount, note, spent_at, created_at
		)
		SELECT e.id, e.type_id, t.name, e.amount, e.note, e.spent_at, e.created_at
		FROM inserted e JOIN expense_types t ON t.id = e.type_id`

	var note pgtype.Text
	if input.Note != "" {
		note = pgtype.Text{String: input.Note, Valid: true}
	}
	return scanExpense(r.pool.QueryRow(ctx, query, typeID, input.Amount, note, input.SpentAt))
}

// GetExpense retrieves one expense by ID.
func (r *Repository) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses e JOIN expense_types t ON t.id = e.type_id WHERE e.id = $1`
	return scanExpense(r.pool.QueryRow(ctx, query, id))
}

// ListExpenses returns expenses with optional filtering, newest first.
func (r *Repository) ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses e JOIN expense_types t ON t.id = e.type_id WHERE 1=1`

	args := []any{}
	argNum := 1

	if !req.From.IsZero() {
		query += fmt.Sprintf(" AND e.spent_at >= $%d", argNum)
		args = append(args, req.From)
		argNum++
	}
	if !req.To.IsZero() {
		query += fmt.Sprintf(" AND e.spent_at < $%d", argNum)
		args = append(args, req.To)
		argNum++
	}
	if req.TypeID > 0 {
		query += fmt.Sprintf(" AND e.type_id = $%d", argNum)
		args = append(args, req.TypeID)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY e.spent_at DESC LIMIT $%d", argNum)
	args = append(args, req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteExpense removes an expense row.
func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// SumExpenses totals expenses spent in [from, to).
func (r *Repository) SumExpenses(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE spent_at >= $1 AND spent_at < $2`,
		from, to,
	).Scan(&total)
	return total, err
}
