package expenses

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryExpenseRepo struct {
	types      map[int64]*ExpenseType
	expenses   map[int64]*Expense
	nextTypeID int64
	nextID     int64
}

func newMemoryExpenseRepo() *memoryExpenseRepo {
	return &memoryExpenseRepo{
		types:    make(map[int64]*ExpenseType),
		expenses: make(map[int64]*Expense),
	}
}

func (r *memoryExpenseRepo) FindOrCreateType(ctx context.Context, name string) (*ExpenseType, error) {
	for _, t := range r.types {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	r.nextTypeID++
	t := &ExpenseType{ID: r.nextTypeID, Name: name}
	r.types[t.ID] = t
	return t, nil
}

func (r *memoryExpenseRepo) ListTypes(ctx context.Context) ([]ExpenseType, error) {
	var out []ExpenseType
	for _, t := range r.types {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memoryExpenseRepo) CreateExpense(ctx context.Context, typeID int64, input ExpenseInput) (*Expense, error) {
	r.nextID++
	e := &Expense{
		ID:        r.nextID,
		TypeID:    typeID,
		TypeName:  r.types[typeID].Name,
		Amount:    input.Amount,
		Note:      input.Note,
		SpentAt:   input.SpentAt,
		CreatedAt: time.Now(),
	}
	r.expenses[e.ID] = e
	return e, nil
}

func (r *memoryExpenseRepo) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

func (r *memoryExpenseRepo) ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, error) {
	var out []Expense
	for _, e := range r.expenses {
		if !req.From.IsZero() && e.SpentAt.Before(req.From) {
			continue
		}
		if !req.To.IsZero() && !e.SpentAt.Before(req.To) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *memoryExpenseRepo) DeleteExpense(ctx context.Context, id int64) error {
	if _, ok := r.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *memoryExpenseRepo) SumExpenses(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	for _, e := range r.expenses {
		if !e.SpentAt.Before(from) && e.SpentAt.Before(to) {
			total += e.Amount
		}
	}
	return total, nil
}

func TestRecordExpenseCreatesTypeOnFirstUse(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryExpenseRepo()
	svc := NewService(repo)

	e1, err := svc.RecordExpense(ctx, ExpenseInput{TypeName: "Utilities", Amount: 500})
	require.NoError(t, err)
	require.Equal(t, "Utilities", e1.TypeName)

	// Same type, different case: reuses the existing bucket.
	e2, err := svc.RecordExpense(ctx, ExpenseInput{TypeName: "utilities", Amount: 300})
	require.NoError(t, err)
	require.Equal(t, e1.TypeID, e2.TypeID)
	require.Len(t, repo.types, 1)
}

func TestRecordExpenseValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryExpenseRepo())

	_, err := svc.RecordExpense(ctx, ExpenseInput{TypeName: "  ", Amount: 100})
	require.ErrorIs(t, err, ErrTypeRequired)

	_, err = svc.RecordExpense(ctx, ExpenseInput{TypeName: "Ice", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordExpenseDefaultsSpentAtToNow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewService(newMemoryExpenseRepo()).WithNow(func() time.Time { return now })

	e, err := svc.RecordExpense(ctx, ExpenseInput{TypeName: "Ice", Amount: 50})
	require.NoError(t, err)
	require.Equal(t, now, e.SpentAt)
}

func TestTotalForDay(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryExpenseRepo()
	svc := NewService(repo)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.RecordExpense(ctx, ExpenseInput{TypeName: "Ice", Amount: 50, SpentAt: day.Add(8 * time.Hour)})
	require.NoError(t, err)
	_, err = svc.RecordExpense(ctx, ExpenseInput{TypeName: "Utilities", Amount: 200, SpentAt: day.Add(18 * time.Hour)})
	require.NoError(t, err)
	// Previous day: excluded.
	_, err = svc.RecordExpense(ctx, ExpenseInput{TypeName: "Ice", Amount: 999, SpentAt: day.Add(-2 * time.Hour)})
	require.NoError(t, err)

	total, err := svc.TotalForDay(ctx, day.Add(12*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 250.0, total)
}
