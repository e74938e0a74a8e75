package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sarisari-pos/sarisari/internal/payments"
)

// TxRepository exposes the operations checkout runs inside one transaction.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (*SaleProduct, error)
	AdjustProductStock(ctx context.Context, productID int64, delta int) error
	InsertSale(ctx context.Context, sale *Sale) (int64, error)
	InsertSaleItems(ctx context.Context, saleID int64, items []SaleItem) error
	GetSaleForUpdate(ctx context.Context, saleID int64) (*Sale, error)
	GetSaleItems(ctx context.Context, saleID int64) ([]SaleItem, error)
	DeleteSaleItems(ctx context.Context, saleID int64) error
	UpdateSale(ctx context.Context, sale *Sale) error
	DeleteSale(ctx context.Context, saleID int64) error
	InsertMovement(ctx context.Context, movement StockMovement) error
}

// RepositoryPort defines data access methods for sales.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, error)
}

// CacheInvalidator is notified after a committed write so cached reports
// rebuild on their next read.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service handles checkout and transaction maintenance. Every stock mutation
// happens inside a repository transaction with the product rows locked, so a
// failed line leaves no partial sale behind.
type Service struct {
	repo        RepositoryPort
	invalidator CacheInvalidator
	now         func() time.Time
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

// WithInvalidator attaches a report-cache invalidator.
func (s *Service) WithInvalidator(inv CacheInvalidator) *Service {
	s.invalidator = inv
	return s
}

// bumpCaches is best effort: a failed bump only delays cache refresh.
func (s *Service) bumpCaches(ctx context.Context) {
	if s.invalidator != nil {
		_ = s.invalidator.Bump(ctx)
	}
}

func validateCheckoutInput(input CheckoutInput) error {
	if len(input.Lines) == 0 {
		return ErrInvalidQuantity
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	if input.Discount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// checkPaymentCoverage rejects split payments that fall short of the total.
// A legacy single-method payment carries no explicit amount and implicitly
// covers the full total, so it always passes.
func checkPaymentCoverage(mop string, total float64) error {
	entries := payments.Parse(mop)
	if len(entries) == 0 {
		return nil
	}
	if len(entries) == 1 && entries[0].Amount == nil {
		return nil
	}
	var sum float64
	for _, entry := range entries {
		if strings.TrimSpace(entry.Method) == "" || entry.Amount == nil || *entry.Amount <= 0 {
			return ErrInvalidAmount
		}
		sum += *entry.Amount
	}
	if sum < total {
		return fmt.Errorf("%w: paid %.2f of %.2f", ErrPaymentInsufficient, sum, total)
	}
	return nil
}

// applyLines locks each product, checks stock, decrements it, and returns the
// snapshotted items plus the gross amount before discount.
func (s *Service) applyLines(ctx context.Context, tx TxRepository, saleID int64, lines []LineInput, reason string) ([]SaleItem, float64, error) {
	var items []SaleItem
	var gross float64
	for _, line := range lines {
		product, err := tx.GetProductForUpdate(ctx, line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if product.Stock < line.Quantity {
			return nil, 0, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, product.Name, product.Stock)
		}
		if err := tx.AdjustProductStock(ctx, product.ID, -line.Quantity); err != nil {
			return nil, 0, err
		}
		if err := tx.InsertMovement(ctx, StockMovement{
			ProductID: product.ID,
			Change:    -line.Quantity,
			Reason:    reason,
			SaleID:    saleID,
			CreatedAt: s.now(),
		}); err != nil {
			return nil, 0, err
		}
		gross += product.Price * float64(line.Quantity)
		items = append(items, SaleItem{
			SaleID:    saleID,
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
	}
	return items, gross, nil
}

// restoreItems puts the stock of existing sale items back.
func (s *Service) restoreItems(ctx context.Context, tx TxRepository, saleID int64, items []SaleItem, reason string) error {
	for _, item := range items {
		if err := tx.AdjustProductStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := tx.InsertMovement(ctx, StockMovement{
			ProductID: item.ProductID,
			Change:    item.Quantity,
			Reason:    reason,
			SaleID:    saleID,
			CreatedAt: s.now(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Checkout records a sale, snapshots its lines, and decrements stock, all in
// one transaction. The total is gross minus discount; a discount larger than
// the gross produces a negative total and is accepted as entered.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (*Sale, error) {
	if err := validateCheckoutInput(input); err != nil {
		return nil, err
	}

	var sale *Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, gross, err := s.applyLines(ctx, tx, 0, input.Lines, ReasonSale)
		if err != nil {
			return err
		}
		total := gross - input.Discount
		if err := checkPaymentCoverage(input.MOP, total); err != nil {
			return err
		}

		now := s.now()
		sale = &Sale{
			Total:        total,
			Discount:     input.Discount,
			MOP:          input.MOP,
			CustomerName: input.CustomerName,
			CashierID:    input.CashierID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		saleID, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = saleID
		for i := range items {
			items[i].SaleID = saleID
		}
		if err := tx.InsertSaleItems(ctx, saleID, items); err != nil {
			return err
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bumpCaches(ctx)
	return sale, nil
}

// EditTransaction replaces a sale's lines, discount, and payment. Stock from
// the old lines is restored before the new lines are applied, so swapping
// items never reports phantom shortages.
func (s *Service) EditTransaction(ctx context.Context, saleID int64, input CheckoutInput) (*Sale, error) {
	if err := validateCheckoutInput(input); err != nil {
		return nil, err
	}

	var sale *Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		oldItems, err := tx.GetSaleItems(ctx, saleID)
		if err != nil {
			return err
		}
		if err := s.restoreItems(ctx, tx, saleID, oldItems, ReasonSaleEdit); err != nil {
			return err
		}
		if err := tx.DeleteSaleItems(ctx, saleID); err != nil {
			return err
		}

		items, gross, err := s.applyLines(ctx, tx, saleID, input.Lines, ReasonSaleEdit)
		if err != nil {
			return err
		}
		total := gross - input.Discount
		if err := checkPaymentCoverage(input.MOP, total); err != nil {
			return err
		}

		existing.Total = total
		existing.Discount = input.Discount
		existing.MOP = input.MOP
		existing.UpdatedAt = s.now()
		if err := tx.UpdateSale(ctx, existing); err != nil {
			return err
		}
		if err := tx.InsertSaleItems(ctx, saleID, items); err != nil {
			return err
		}
		existing.Items = items
		sale = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bumpCaches(ctx)
	return sale, nil
}

// DeleteTransaction voids a sale and returns its stock to the shelf.
func (s *Service) DeleteTransaction(ctx context.Context, saleID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetSaleForUpdate(ctx, saleID); err != nil {
			return err
		}
		items, err := tx.GetSaleItems(ctx, saleID)
		if err != nil {
			return err
		}
		if err := s.restoreItems(ctx, tx, saleID, items, ReasonSaleReversal); err != nil {
			return err
		}
		if err := tx.DeleteSaleItems(ctx, saleID); err != nil {
			return err
		}
		return tx.DeleteSale(ctx, saleID)
	})
	if err != nil {
		return err
	}
	s.bumpCaches(ctx)
	return nil
}

// GetSale returns one sale with its items.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns sales matching the filter, newest first.
func (s *Service) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, error) {
	if req.Limit <= 0 {
		req.Limit = 100
	}
	return s.repo.ListSales(ctx, req)
}
