package sales

import (
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

var (
	// ErrSaleNotFound indicates the sale does not exist.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrProductNotFound indicates a line references a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock indicates a line asks for more units than on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPaymentInsufficient indicates split payments do not cover the total.
	ErrPaymentInsufficient = errors.New("payments do not cover the sale total")
	// ErrInvalidQuantity indicates a non-positive line quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidAmount indicates a negative discount or a malformed payment entry.
	ErrInvalidAmount = errors.New("invalid amount")
)

func init() {
	shared.RegisterUserSafe(
		ErrSaleNotFound, ErrProductNotFound, ErrInsufficientStock,
		ErrPaymentInsufficient, ErrInvalidQuantity, ErrInvalidAmount,
	)
}

// Sale is a completed checkout. MOP holds the raw payment-method field in
// either its legacy or split-payment encoding.
type Sale struct {
	ID           int64      `json:"id"`
	Total        float64    `json:"total"`
	Discount     float64    `json:"discount"`
	MOP          string     `json:"mop"`
	CustomerName string     `json:"customerName,omitempty"`
	CashierID    int64      `json:"cashierId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Items        []SaleItem `json:"items,omitempty"`
}

// SaleItem snapshots one product line at sale time. Name and Price are copied
// from the product so later catalog edits do not rewrite history.
type SaleItem struct {
	ID        int64   `json:"id"`
	SaleID    int64   `json:"saleId"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// LineInput is one requested checkout line.
type LineInput struct {
	ProductID int64
	Quantity  int
}

// CheckoutInput describes a checkout or transaction edit. MOP carries the raw
// payment-method encoding.
type CheckoutInput struct {
	Lines        []LineInput
	Discount     float64
	MOP          string
	CustomerName string
	CashierID    int64
}

// SaleProduct is the product view checkout needs, read under row lock.
type SaleProduct struct {
	ID    int64
	Name  string
	Price float64
	Stock int
}

// StockMovement records a stock change caused by a sale operation.
type StockMovement struct {
	ProductID int64
	Change    int
	Reason    string
	SaleID    int64
	CreatedAt time.Time
}

// Movement reasons written by this package.
const (
	ReasonSale         = "sale"
	ReasonSaleEdit     = "sale-edit"
	ReasonSaleReversal = "sale-reversal"
)

// ListSalesRequest filters sale listings.
type ListSalesRequest struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
