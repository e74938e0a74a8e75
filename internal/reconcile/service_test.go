package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

type memoryReconcileRepo struct {
	floats  map[string]*CashFloat
	records map[string]*Reconciliation
	tenders []tenderRow
	nextID  int64
}

type tenderRow struct {
	at     time.Time
	tender SaleTender
}

func newMemoryReconcileRepo() *memoryReconcileRepo {
	return &memoryReconcileRepo{
		floats:  make(map[string]*CashFloat),
		records: make(map[string]*Reconciliation),
	}
}

func dateKey(t time.Time) string { return t.Format(shared.DateLayout) }

func (r *memoryReconcileRepo) addSale(at time.Time, total float64, mop string) {
	r.tenders = append(r.tenders, tenderRow{at: at, tender: SaleTender{Total: total, MOP: mop}})
}

func (r *memoryReconcileRepo) GetStartingCash(ctx context.Context, date time.Time) (*CashFloat, error) {
	f, ok := r.floats[dateKey(date)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return f, nil
}

func (r *memoryReconcileRepo) UpsertStartingCash(ctx context.Context, float CashFloat) (*CashFloat, error) {
	stored := float
	r.floats[dateKey(float.Date)] = &stored
	return &stored, nil
}

func (r *memoryReconcileRepo) InsertReconciliation(ctx context.Context, rec Reconciliation) (*Reconciliation, error) {
	key := dateKey(rec.Date)
	if _, exists := r.records[key]; exists {
		return nil, ErrAlreadyClosed
	}
	r.nextID++
	rec.ID = r.nextID
	r.records[key] = &rec
	return &rec, nil
}

func (r *memoryReconcileRepo) GetReconciliationByDate(ctx context.Context, date time.Time) (*Reconciliation, error) {
	rec, ok := r.records[dateKey(date)]
	if !ok {
		return nil, ErrNotClosed
	}
	return rec, nil
}

func (r *memoryReconcileRepo) ListReconciliations(ctx context.Context, from, to time.Time, limit int) ([]Reconciliation, error) {
	var out []Reconciliation
	for _, rec := range r.records {
		if !from.IsZero() && rec.Date.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Date.After(to) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *memoryReconcileRepo) ListSaleTenders(ctx context.Context, from, to time.Time) ([]SaleTender, error) {
	var out []SaleTender
	for _, row := range r.tenders {
		if row.at.Before(from) || !row.at.Before(to) {
			continue
		}
		out = append(out, row.tender)
	}
	return out, nil
}

type fixedExpenses struct {
	total float64
}

func (f fixedExpenses) TotalForDay(ctx context.Context, t time.Time) (float64, error) {
	return f.total, nil
}

func newTestService(repo *memoryReconcileRepo, expenseTotal float64) *Service {
	svc := NewService(repo, fixedExpenses{total: expenseTotal}, time.UTC)
	return svc.WithNow(func() time.Time {
		return time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
	})
}

func TestCloseDayComputesCashFigures(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryReconcileRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	repo.addSale(day.Add(9*time.Hour), 250, "Cash")
	repo.addSale(day.Add(11*time.Hour), 120, "GCash")
	repo.addSale(day.Add(15*time.Hour), 500, `[{"method":"cash","amount":300},{"method":"gcash","amount":200}]`)

	svc := newTestService(repo, 75)
	_, err := svc.SetStartingCash(ctx, day, 1000, 1)
	require.NoError(t, err)

	rec, err := svc.CloseDay(ctx, CloseDayInput{ActualCash: 1500, ClosedBy: 1})
	require.NoError(t, err)

	require.Equal(t, 1000.0, rec.StartingCash)
	require.Equal(t, 550.0, rec.CashSales)    // 250 legacy + 300 split
	require.Equal(t, 320.0, rec.NonCashSales) // 120 + 200
	require.Equal(t, 870.0, rec.TotalSales)
	require.Equal(t, 3, rec.SaleCount)
	require.Equal(t, 75.0, rec.TotalExpenses)
	require.Equal(t, 1550.0, rec.ExpectedCash) // 1000 + 550
	require.Equal(t, -50.0, rec.CashDifference)
}

func TestCloseDayWithoutStartingCashDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryReconcileRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo.addSale(day.Add(10*time.Hour), 100, "Cash")

	rec, err := newTestService(repo, 0).CloseDay(ctx, CloseDayInput{ActualCash: 100})
	require.NoError(t, err)
	require.Equal(t, 0.0, rec.StartingCash)
	require.Equal(t, 100.0, rec.ExpectedCash)
	require.Equal(t, 0.0, rec.CashDifference)
}

func TestCloseDayTwiceFails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryReconcileRepo(), 0)

	_, err := svc.CloseDay(ctx, CloseDayInput{ActualCash: 0})
	require.NoError(t, err)

	_, err = svc.CloseDay(ctx, CloseDayInput{ActualCash: 0})
	require.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestCloseDayExplicitPastDate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryReconcileRepo()
	past := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	repo.addSale(past.Add(10*time.Hour), 300, "Cash")
	// Current day's sale must not leak into the past close.
	repo.addSale(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), 900, "Cash")

	rec, err := newTestService(repo, 0).CloseDay(ctx, CloseDayInput{Date: past, ActualCash: 300})
	require.NoError(t, err)
	require.Equal(t, past, rec.Date)
	require.Equal(t, 300.0, rec.CashSales)
}

func TestCloseDayRejectsNegativeActualCash(t *testing.T) {
	ctx := context.Background()
	_, err := newTestService(newMemoryReconcileRepo(), 0).CloseDay(ctx, CloseDayInput{ActualCash: -1})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSetStartingCashOverwritesSameDay(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryReconcileRepo()
	svc := newTestService(repo, 0)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.SetStartingCash(ctx, day, 500, 1)
	require.NoError(t, err)
	updated, err := svc.SetStartingCash(ctx, day, 800, 2)
	require.NoError(t, err)
	require.Equal(t, 800.0, updated.Amount)

	float, err := svc.GetStartingCash(ctx, day)
	require.NoError(t, err)
	require.Equal(t, 800.0, float.Amount)
	require.Equal(t, int64(2), float.SetBy)
}

func TestGetStartingCashUnsetReturnsZero(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryReconcileRepo(), 0)

	float, err := svc.GetStartingCash(ctx, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 0.0, float.Amount)
}

func TestSnapshotReflectsOpenDay(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryReconcileRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo.addSale(day.Add(9*time.Hour), 250, "Cash")
	svc := newTestService(repo, 30)

	snap, err := svc.Snapshot(ctx, time.Time{})
	require.NoError(t, err)
	require.False(t, snap.Closed)
	require.Equal(t, 1, snap.SaleCount)
	require.Equal(t, 250.0, snap.CashSales)
	require.Equal(t, 30.0, snap.TotalExpenses)

	_, err = svc.CloseDay(ctx, CloseDayInput{ActualCash: 250})
	require.NoError(t, err)

	snap, err = svc.Snapshot(ctx, time.Time{})
	require.NoError(t, err)
	require.True(t, snap.Closed)
}
