package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryInventoryRepo struct {
	stock     map[int64]int
	movements []Movement
}

func newMemoryInventoryRepo() *memoryInventoryRepo {
	return &memoryInventoryRepo{stock: make(map[int64]int)}
}

func (r *memoryInventoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	stockBefore := make(map[int64]int, len(r.stock))
	for id, qty := range r.stock {
		stockBefore[id] = qty
	}
	movementsBefore := len(r.movements)
	if err := fn(ctx, r); err != nil {
		r.stock = stockBefore
		r.movements = r.movements[:movementsBefore]
		return err
	}
	return nil
}

func (r *memoryInventoryRepo) GetStockForUpdate(ctx context.Context, productID int64) (int, error) {
	stock, ok := r.stock[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	return stock, nil
}

func (r *memoryInventoryRepo) AdjustProductStock(ctx context.Context, productID int64, delta int) error {
	if _, ok := r.stock[productID]; !ok {
		return ErrProductNotFound
	}
	r.stock[productID] += delta
	return nil
}

func (r *memoryInventoryRepo) InsertMovement(ctx context.Context, movement Movement) error {
	movement.ID = int64(len(r.movements) + 1)
	r.movements = append(r.movements, movement)
	return nil
}

func (r *memoryInventoryRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if filter.ProductID != 0 && m.ProductID != filter.ProductID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func TestAdjustRestock(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInventoryRepo()
	repo.stock[1] = 5
	svc := NewService(repo)

	movement, err := svc.Adjust(ctx, AdjustInput{ProductID: 1, Change: 24})
	require.NoError(t, err)
	require.Equal(t, ReasonRestock, movement.Reason)
	require.Equal(t, 29, repo.stock[1])
}

func TestAdjustNegativeCorrection(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInventoryRepo()
	repo.stock[1] = 5
	svc := NewService(repo)

	movement, err := svc.Adjust(ctx, AdjustInput{ProductID: 1, Change: -2, Reason: "breakage"})
	require.NoError(t, err)
	require.Equal(t, "breakage", movement.Reason)
	require.Equal(t, 3, repo.stock[1])
}

func TestAdjustRejectsNegativeStock(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryInventoryRepo()
	repo.stock[1] = 5
	svc := NewService(repo)

	_, err := svc.Adjust(ctx, AdjustInput{ProductID: 1, Change: -6})
	require.ErrorIs(t, err, ErrNegativeStock)
	require.Equal(t, 5, repo.stock[1])
	require.Empty(t, repo.movements)
}

func TestAdjustRejectsZeroChange(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryInventoryRepo())

	_, err := svc.Adjust(ctx, AdjustInput{ProductID: 1, Change: 0})
	require.ErrorIs(t, err, ErrInvalidChange)
}

func TestAdjustUnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryInventoryRepo())

	_, err := svc.Adjust(ctx, AdjustInput{ProductID: 7, Change: 3})
	require.ErrorIs(t, err, ErrProductNotFound)
}
