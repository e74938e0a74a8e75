package expenses

import (
	"context"
	"strings"
	"time"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// RepositoryPort defines data access methods for expenses.
type RepositoryPort interface {
	FindOrCreateType(ctx context.Context, name string) (*ExpenseType, error)
	ListTypes(ctx context.Context) ([]ExpenseType, error)
	CreateExpense(ctx context.Context, typeID int64, input ExpenseInput) (*Expense, error)
	GetExpense(ctx context.Context, id int64) (*Expense, error)
	ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	SumExpenses(ctx context.Context, from, to time.Time) (float64, error)
}

// Service handles expense business logic.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock. Used in tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordExpense stores an expense, creating its type on first use.
func (s *Service) RecordExpense(ctx context.Context, input ExpenseInput) (*Expense, error) {
	input.TypeName = strings.TrimSpace(input.TypeName)
	if input.TypeName == "" {
		return nil, ErrTypeRequired
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if input.SpentAt.IsZero() {
		input.SpentAt = s.now()
	}
	expType, err := s.repo.FindOrCreateType(ctx, input.TypeName)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateExpense(ctx, expType.ID, input)
}

// GetExpense returns one expense.
func (s *Service) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

// ListExpenses returns expenses matching the filter, newest first.
func (s *Service) ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, error) {
	if req.Limit <= 0 {
		req.Limit = 100
	}
	return s.repo.ListExpenses(ctx, req)
}

// ListTypes returns all expense types.
func (s *Service) ListTypes(ctx context.Context) ([]ExpenseType, error) {
	return s.repo.ListTypes(ctx)
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	return s.repo.DeleteExpense(ctx, id)
}

// TotalForDay sums expenses spent during the calendar day containing t.
func (s *Service) TotalForDay(ctx context.Context, t time.Time) (float64, error) {
	from, to := shared.DayWindow(t)
	return s.repo.SumExpenses(ctx, from, to)
}
