package reconcile

import (
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

var (
	// ErrAlreadyClosed indicates the day already has a reconciliation.
	ErrAlreadyClosed = errors.New("day already closed")
	// ErrNotClosed indicates no reconciliation exists for the day.
	ErrNotClosed = errors.New("day not closed")
	// ErrInvalidAmount indicates a negative cash amount.
	ErrInvalidAmount = errors.New("cash amount must not be negative")
)

func init() {
	shared.RegisterUserSafe(ErrAlreadyClosed, ErrNotClosed, ErrInvalidAmount)
}

// CashFloat is the cash drawer's opening amount for one calendar day. Setting
// it again for the same day overwrites the previous value.
type CashFloat struct {
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	SetBy     int64     `json:"setBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reconciliation is the immutable end-of-day close record. Expected cash is
// the opening float plus the day's cash sales; the difference is counted
// drawer cash minus expected.
type Reconciliation struct {
	ID             int64     `json:"id"`
	Date           time.Time `json:"date"`
	StartingCash   float64   `json:"startingCash"`
	CashSales      float64   `json:"cashSales"`
	NonCashSales   float64   `json:"nonCashSales"`
	TotalSales     float64   `json:"totalSales"`
	SaleCount      int       `json:"saleCount"`
	TotalExpenses  float64   `json:"totalExpenses"`
	ExpectedCash   float64   `json:"expectedCash"`
	ActualCash     float64   `json:"actualCash"`
	CashDifference float64   `json:"cashDifference"`
	Notes          string    `json:"notes,omitempty"`
	ClosedBy       int64     `json:"closedBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CloseDayInput describes an end-of-day close request.
type CloseDayInput struct {
	Date       time.Time
	ActualCash float64
	Notes      string
	ClosedBy   int64
}

// DaySnapshot is the live view of an open day, computed on demand with the
// same formulas the close uses.
type DaySnapshot struct {
	Date          time.Time `json:"date"`
	StartingCash  float64   `json:"startingCash"`
	CashSales     float64   `json:"cashSales"`
	NonCashSales  float64   `json:"nonCashSales"`
	TotalSales    float64   `json:"totalSales"`
	TotalExpenses float64   `json:"totalExpenses"`
	ExpectedCash  float64   `json:"expectedCash"`
	SaleCount     int       `json:"saleCount"`
	Closed        bool      `json:"closed"`
}

// SaleTender is the slice of a sale reconciliation needs: its total and the
// raw payment-method field.
type SaleTender struct {
	Total float64
	MOP   string
}
