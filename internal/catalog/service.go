package catalog

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CountSaleItemsByProduct(ctx context.Context, productID int64) (int, error)

	CreateCategory(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountProductsByCategory(ctx context.Context, categoryID int64) (int, error)
}

// Service handles catalog business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func validateProductInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Barcode = strings.TrimSpace(input.Barcode)
	if input.Name == "" {
		return errors.New("product name required")
	}
	if input.Price < 0 {
		return errors.New("price must not be negative")
	}
	if input.Cost < 0 {
		return errors.New("cost must not be negative")
	}
	if input.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	if input.LowStockThreshold < 0 {
		return errors.New("low stock threshold must not be negative")
	}
	return nil
}

// CreateProduct registers a new product.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}
	if input.Barcode != "" {
		existing, err := s.repo.GetProductByBarcode(ctx, input.Barcode)
		if err != nil && !errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateBarcode
		}
	}
	return s.repo.CreateProduct(ctx, input)
}

// GetProduct returns one product by ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// GetProductByBarcode looks a product up by its barcode.
func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.GetProductByBarcode(ctx, strings.TrimSpace(barcode))
}

// ListProducts returns products matching the filter.
func (s *Service) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	return s.repo.ListProducts(ctx, req)
}

// UpdateProduct replaces a product's attributes. Stock passed here is the new
// on-hand count; checkout adjustments go through the sales service instead.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}
	if input.Barcode != "" {
		existing, err := s.repo.GetProductByBarcode(ctx, input.Barcode)
		if err != nil && !errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrDuplicateBarcode
		}
	}
	return s.repo.UpdateProduct(ctx, id, input)
}

// DeleteProduct removes a product unless sales reference it. Products with
// sale history must stay so old transactions keep their line detail.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountSaleItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProductInUse
	}
	return s.repo.DeleteProduct(ctx, id)
}

// CreateCategory registers a new category.
func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name required")
	}
	return s.repo.CreateCategory(ctx, name)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// DeleteCategory removes an empty category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	count, err := s.repo.CountProductsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.repo.DeleteCategory(ctx, id)
}
