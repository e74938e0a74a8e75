package inventory

import (
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

var (
	// ErrProductNotFound indicates the product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrNegativeStock indicates the adjustment would drive stock below zero.
	ErrNegativeStock = errors.New("adjustment would make stock negative")
	// ErrInvalidChange indicates a zero quantity change.
	ErrInvalidChange = errors.New("quantity change must not be zero")
)

func init() {
	shared.RegisterUserSafe(ErrProductNotFound, ErrNegativeStock, ErrInvalidChange)
}

// Movement is one stock change, written by checkout, transaction edits, and
// manual adjustments.
type Movement struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	Change      int       `json:"change"`
	Reason      string    `json:"reason"`
	SaleID      int64     `json:"saleId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Movement reasons written by this package.
const (
	ReasonAdjustment = "adjustment"
	ReasonRestock    = "restock"
)

// AdjustInput describes a manual stock correction.
type AdjustInput struct {
	ProductID int64
	Change    int
	Reason    string
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ProductID int64
	From      time.Time
	To        time.Time
	Limit     int
}
