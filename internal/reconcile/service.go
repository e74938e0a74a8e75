package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/payments"
	"github.com/sarisari-pos/sarisari/internal/shared"
)

// RepositoryPort defines data access methods for reconciliation.
type RepositoryPort interface {
	GetStartingCash(ctx context.Context, date time.Time) (*CashFloat, error)
	UpsertStartingCash(ctx context.Context, float CashFloat) (*CashFloat, error)
	InsertReconciliation(ctx context.Context, rec Reconciliation) (*Reconciliation, error)
	GetReconciliationByDate(ctx context.Context, date time.Time) (*Reconciliation, error)
	ListReconciliations(ctx context.Context, from, to time.Time, limit int) ([]Reconciliation, error)
	ListSaleTenders(ctx context.Context, from, to time.Time) ([]SaleTender, error)
}

// ExpenseTotalsPort supplies the day's expense total.
type ExpenseTotalsPort interface {
	TotalForDay(ctx context.Context, t time.Time) (float64, error)
}

// Service computes and records end-of-day reconciliations. The day boundary
// is the store's local midnight; an absent opening float counts as zero.
type Service struct {
	repo     RepositoryPort
	expenses ExpenseTotalsPort
	location *time.Location
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, expenses ExpenseTotalsPort, location *time.Location) *Service {
	return &Service{repo: repo, expenses: expenses, location: location, now: time.Now}
}

// WithNow overrides the clock. Used in tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// day normalizes t to the store-local midnight that keys float and close rows.
func (s *Service) day(t time.Time) time.Time {
	local := t.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
}

type dayTotals struct {
	cashSales     float64
	nonCashSales  float64
	totalSales    float64
	totalExpenses float64
	startingCash  float64
	saleCount     int
}

func (s *Service) computeDay(ctx context.Context, date time.Time) (dayTotals, error) {
	from, to := shared.DayWindow(date)

	var totals dayTotals
	tenders, err := s.repo.ListSaleTenders(ctx, from, to)
	if err != nil {
		return totals, err
	}
	for _, tender := range tenders {
		cash := payments.CashAmount(tender.MOP, tender.Total)
		totals.cashSales += cash
		totals.nonCashSales += tender.Total - cash
		totals.totalSales += tender.Total
	}
	totals.saleCount = len(tenders)

	float, err := s.repo.GetStartingCash(ctx, date)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return totals, err
	}
	if float != nil {
		totals.startingCash = float.Amount
	}

	totals.totalExpenses, err = s.expenses.TotalForDay(ctx, date)
	if err != nil {
		return totals, err
	}
	return totals, nil
}

// CloseDay records the end-of-day reconciliation. A zero input date closes
// the current store-local day. Closing the same day twice fails.
func (s *Service) CloseDay(ctx context.Context, input CloseDayInput) (*Reconciliation, error) {
	if input.ActualCash < 0 {
		return nil, ErrInvalidAmount
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	date = s.day(date)

	totals, err := s.computeDay(ctx, date)
	if err != nil {
		return nil, err
	}

	expected := totals.startingCash + totals.cashSales
	rec := Reconciliation{
		Date:           date,
		StartingCash:   totals.startingCash,
		CashSales:      totals.cashSales,
		NonCashSales:   totals.nonCashSales,
		TotalSales:     totals.totalSales,
		SaleCount:      totals.saleCount,
		TotalExpenses:  totals.totalExpenses,
		ExpectedCash:   expected,
		ActualCash:     input.ActualCash,
		CashDifference: input.ActualCash - expected,
		Notes:          input.Notes,
		ClosedBy:       input.ClosedBy,
		CreatedAt:      s.now(),
	}
	return s.repo.InsertReconciliation(ctx, rec)
}

// Snapshot returns the live totals for the given day without closing it.
func (s *Service) Snapshot(ctx context.Context, date time.Time) (*DaySnapshot, error) {
	if date.IsZero() {
		date = s.now()
	}
	date = s.day(date)

	totals, err := s.computeDay(ctx, date)
	if err != nil {
		return nil, err
	}

	closed := true
	if _, err := s.repo.GetReconciliationByDate(ctx, date); err != nil {
		if !errors.Is(err, ErrNotClosed) {
			return nil, err
		}
		closed = false
	}

	return &DaySnapshot{
		Date:          date,
		StartingCash:  totals.startingCash,
		CashSales:     totals.cashSales,
		NonCashSales:  totals.nonCashSales,
		TotalSales:    totals.totalSales,
		TotalExpenses: totals.totalExpenses,
		ExpectedCash:  totals.startingCash + totals.cashSales,
		SaleCount:     totals.saleCount,
		Closed:        closed,
	}, nil
}

// GetByDate returns the close record for one day.
func (s *Service) GetByDate(ctx context.Context, date time.Time) (*Reconciliation, error) {
	return s.repo.GetReconciliationByDate(ctx, s.day(date))
}

// History returns close records in [from, to], newest first.
func (s *Service) History(ctx context.Context, from, to time.Time, limit int) ([]Reconciliation, error) {
	if limit <= 0 {
		limit = 60
	}
	return s.repo.ListReconciliations(ctx, from, to, limit)
}

// SetStartingCash sets the opening float for a day, overwriting any earlier
// value. A zero date targets the current store-local day.
func (s *Service) SetStartingCash(ctx context.Context, date time.Time, amount float64, setBy int64) (*CashFloat, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if date.IsZero() {
		date = s.now()
	}
	return s.repo.UpsertStartingCash(ctx, CashFloat{
		Date:      s.day(date),
		Amount:    amount,
		SetBy:     setBy,
		UpdatedAt: s.now(),
	})
}

// GetStartingCash returns the opening float for a day, zero when unset.
func (s *Service) GetStartingCash(ctx context.Context, date time.Time) (*CashFloat, error) {
	if date.IsZero() {
		date = s.now()
	}
	date = s.day(date)
	float, err := s.repo.GetStartingCash(ctx, date)
	if errors.Is(err, shared.ErrNotFound) {
		return &CashFloat{Date: date, Amount: 0}, nil
	}
	return float, err
}
