package expenses

import (
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

var (
	// ErrExpenseNotFound indicates the expense does not exist.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrInvalidAmount indicates a non-positive expense amount.
	ErrInvalidAmount = errors.New("expense amount must be positive")
	// ErrTypeRequired indicates a missing expense type name.
	ErrTypeRequired = errors.New("expense type required")
)

func init() {
	shared.RegisterUserSafe(ErrExpenseNotFound, ErrInvalidAmount, ErrTypeRequired)
}

// ExpenseType is a named expense bucket, created on first use.
type ExpenseType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Expense is one cash outflow from the store.
type Expense struct {
	ID        int64     `json:"id"`
	TypeID    int64     `json:"typeId"`
	TypeName  string    `json:"typeName"`
	Amount    float64   `json:"amount"`
	Note      string    `json:"note,omitempty"`
	SpentAt   time.Time `json:"spentAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExpenseInput for recording an expense. TypeName is matched against existing
// types case-insensitively; unknown names create a new type.
type ExpenseInput struct {
	TypeName string
	Amount   float64
	Note     string
	SpentAt  time.Time
}

// ListExpensesRequest filters expense listings.
type ListExpensesRequest struct {
	From   time.Time
	To     time.Time
	TypeID int64
	Limit  int
}
