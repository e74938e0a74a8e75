package reports

import (
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/payments"
	"github.com/sarisari-pos/sarisari/internal/shared"
)

// ErrInvalidPeriod indicates an unsupported grouping period.
var ErrInvalidPeriod = errors.New("period must be daily, weekly, or monthly")

func init() {
	shared.RegisterUserSafe(ErrInvalidPeriod)
}

// Grouping periods for sales aggregation.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// PeriodBucket is one row of a sales-over-time aggregation. Period is the
// bucket label: a date for daily, an ISO week for weekly, a month for monthly.
type PeriodBucket struct {
	Period     string  `json:"period"`
	TotalSales float64 `json:"totalSales"`
	Discount   float64 `json:"discount"`
	SaleCount  int     `json:"saleCount"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID    int64   `json:"productId"`
	Name         string  `json:"name"`
	QuantitySold int     `json:"quantitySold"`
	Revenue      float64 `json:"revenue"`
}

// MethodBreakdown is one payment method's share of a window's sales.
type MethodBreakdown struct {
	Method string  `json:"method"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// DashboardSummary is the storefront overview for the current day.
type DashboardSummary struct {
	Date           time.Time       `json:"date"`
	TotalSales     float64         `json:"totalSales"`
	SaleCount      int             `json:"saleCount"`
	TotalExpenses  float64         `json:"totalExpenses"`
	PaymentMethods payments.Totals `json:"paymentMethods"`
	LowStockCount  int             `json:"lowStockCount"`
	TopProducts    []TopProduct    `json:"topProducts"`
}

// TenderRow is the sale slice needed for payment-method breakdowns.
type TenderRow struct {
	Total float64
	MOP   string
}

// RangeRequest bounds an aggregation window.
type RangeRequest struct {
	From time.Time
	To   time.Time
}
