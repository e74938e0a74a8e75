package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sarisari-pos/sarisari/internal/payments"
	"github.com/sarisari-pos/sarisari/internal/shared"
)

// RepositoryPort defines data access methods for reports.
type RepositoryPort interface {
	SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]PeriodBucket, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
	ListSaleTenders(ctx context.Context, from, to time.Time) ([]TenderRow, error)
	CountLowStock(ctx context.Context) (int, error)
}

// ExpenseTotalsPort supplies the day's expense total.
type ExpenseTotalsPort interface {
	TotalForDay(ctx context.Context, t time.Time) (float64, error)
}

// Service aggregates sales into reports. Results are cached in Redis under a
// versioned key; checkout bumps the version so stale figures never outlive a
// write by more than one version.
type Service struct {
	repo     RepositoryPort
	expenses ExpenseTotalsPort
	cache    *Cache
	location *time.Location
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, expenses ExpenseTotalsPort, cache *Cache, location *time.Location) *Service {
	return &Service{repo: repo, expenses: expenses, cache: cache, location: location, now: time.Now}
}

// WithNow overrides the clock. Used in tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

func validPeriod(period string) bool {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// SalesByPeriod groups sales into daily, weekly, or monthly buckets.
func (s *Service) SalesByPeriod(ctx context.Context, period string, rng RangeRequest) ([]PeriodBucket, error) {
	if !validPeriod(period) {
		return nil, ErrInvalidPeriod
	}
	from, to := s.boundWindow(rng)

	key, err := s.cache.BuildKey(ctx, "reports", "sales", period,
		from.Format(shared.DateLayout), to.Format(shared.DateLayout))
	if err != nil {
		return nil, err
	}
	var buckets []PeriodBucket
	err = s.cache.FetchJSON(ctx, key, &buckets, func(ctx context.Context) (interface{}, error) {
		return s.repo.SalesByPeriod(ctx, period, from, to)
	})
	return buckets, err
}

// TopProducts returns the best sellers by quantity in the window.
func (s *Service) TopProducts(ctx context.Context, rng RangeRequest, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	from, to := s.boundWindow(rng)

	key, err := s.cache.BuildKey(ctx, "reports", "top_products",
		from.Format(shared.DateLayout), to.Format(shared.DateLayout))
	if err != nil {
		return nil, err
	}
	var products []TopProduct
	err = s.cache.FetchJSON(ctx, key, &products, func(ctx context.Context) (interface{}, error) {
		return s.repo.TopProducts(ctx, from, to, limit)
	})
	return products, err
}

// PaymentMethodBreakdown totals a window's sales per payment method.
func (s *Service) PaymentMethodBreakdown(ctx context.Context, rng RangeRequest) ([]MethodBreakdown, error) {
	from, to := s.boundWindow(rng)
	tenders, err := s.repo.ListSaleTenders(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var totals payments.Totals
	for _, tender := range tenders {
		totals.Add(tender.MOP, tender.Total)
	}
	rows := []MethodBreakdown{
		{Method: payments.MethodCash, Amount: totals.Cash},
		{Method: payments.MethodGCash, Amount: totals.GCash},
		{Method: payments.MethodCard, Amount: totals.Card},
		{Method: payments.MethodPayMaya, Amount: totals.PayMaya},
		{Method: payments.MethodBankTransfer, Amount: totals.BankTransfer},
		{Method: "other", Amount: totals.Other},
	}
	for i := range rows {
		rows[i].Label = payments.Label(rows[i].Method)
	}
	return rows, nil
}

// Dashboard assembles the current day's overview. The independent queries run
// concurrently.
func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	today := s.now().In(s.location)
	from, to := shared.DayWindow(today)

	summary := &DashboardSummary{Date: from}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tenders, err := s.repo.ListSaleTenders(ctx, from, to)
		if err != nil {
			return err
		}
		for _, tender := range tenders {
			summary.TotalSales += tender.Total
			summary.PaymentMethods.Add(tender.MOP, tender.Total)
		}
		summary.SaleCount = len(tenders)
		return nil
	})
	g.Go(func() error {
		total, err := s.expenses.TotalForDay(ctx, today)
		if err != nil {
			return err
		}
		summary.TotalExpenses = total
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.CountLowStock(ctx)
		if err != nil {
			return err
		}
		summary.LowStockCount = count
		return nil
	})
	g.Go(func() error {
		top, err := s.repo.TopProducts(ctx, from, to, 5)
		if err != nil {
			return err
		}
		summary.TopProducts = top
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// boundWindow fills in defaults: the last 30 days ending now.
func (s *Service) boundWindow(rng RangeRequest) (time.Time, time.Time) {
	to := rng.To
	if to.IsZero() {
		to = s.now().In(s.location)
	}
	from := rng.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}
