package catalog

import (
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

var (
	// ErrProductNotFound indicates the product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound indicates the category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductInUse blocks deleting a product that appears on recorded sales.
	ErrProductInUse = errors.New("product has recorded sales and cannot be deleted")
	// ErrCategoryInUse blocks deleting a category that still has products.
	ErrCategoryInUse = errors.New("category still has products assigned")
	// ErrDuplicateBarcode indicates another product already uses the barcode.
	ErrDuplicateBarcode = errors.New("barcode already registered to another product")
)

func init() {
	shared.RegisterUserSafe(ErrProductNotFound, ErrCategoryNotFound, ErrProductInUse, ErrCategoryInUse, ErrDuplicateBarcode)
}

// Category model.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product model. Stock is the on-hand quantity; it only changes through
// checkout, transaction edits, and inventory adjustments.
type Product struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Barcode           string    `json:"barcode,omitempty"`
	CategoryID        int64     `json:"categoryId,omitempty"`
	Price             float64   `json:"price"`
	Cost              float64   `json:"cost"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// LowStock reports whether the product is at or below its threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// ProductInput for creating and updating products.
type ProductInput struct {
	Name              string
	Barcode           string
	CategoryID        int64
	Price             float64
	Cost              float64
	Stock             int
	LowStockThreshold int
}

// ListProductsRequest filters product listings.
type ListProductsRequest struct {
	Search       string
	CategoryID   int64
	LowStockOnly bool
}
