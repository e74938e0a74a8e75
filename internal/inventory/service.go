package inventory

import (
	"context"
	"time"
)

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetStockForUpdate(ctx context.Context, productID int64) (int, error)
	AdjustProductStock(ctx context.Context, productID int64, delta int) error
	InsertMovement(ctx context.Context, movement Movement) error
}

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}

// Service coordinates manual stock corrections. Unlike checkout, a manual
// adjustment may never take stock below zero.
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

// Adjust applies a manual stock correction under a row lock.
func (s *Service) Adjust(ctx context.Context, input AdjustInput) (*Movement, error) {
	if input.Change == 0 {
		return nil, ErrInvalidChange
	}
	reason := input.Reason
	if reason == "" {
		reason = ReasonAdjustment
		if input.Change > 0 {
			reason = ReasonRestock
		}
	}

	movement := Movement{
		ProductID: input.ProductID,
		Change:    input.Change,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		stock, err := tx.GetStockForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if stock+input.Change < 0 {
			return ErrNegativeStock
		}
		if err := tx.AdjustProductStock(ctx, input.ProductID, input.Change); err != nil {
			return err
		}
		return tx.InsertMovement(ctx, movement)
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

// ListMovements returns movement history, newest first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 200
	}
	return s.repo.ListMovements(ctx, filter)
}
