package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryCatalogRepo struct {
	products       map[int64]*Product
	categories     map[int64]*Category
	saleItemCounts map[int64]int
	nextProductID  int64
	nextCategoryID int64
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{
		products:       make(map[int64]*Product),
		categories:     make(map[int64]*Category),
		saleItemCounts: make(map[int64]int),
	}
}

func (r *memoryCatalogRepo) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	r.nextProductID++
	p := &Product{
		ID:                r.nextProductID,
		Name:              input.Name,
		Barcode:           input.Barcode,
		CategoryID:        input.CategoryID,
		Price:             input.Price,
		Cost:              input.Cost,
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryCatalogRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (r *memoryCatalogRepo) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *memoryCatalogRepo) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if req.CategoryID != 0 && p.CategoryID != req.CategoryID {
			continue
		}
		if req.LowStockOnly && !p.LowStock() {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryCatalogRepo) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p.Name = input.Name
	p.Barcode = input.Barcode
	p.CategoryID = input.CategoryID
	p.Price = input.Price
	p.Cost = input.Cost
	p.Stock = input.Stock
	p.LowStockThreshold = input.LowStockThreshold
	p.UpdatedAt = time.Now()
	return p, nil
}

func (r *memoryCatalogRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryCatalogRepo) CountSaleItemsByProduct(ctx context.Context, productID int64) (int, error) {
	return r.saleItemCounts[productID], nil
}

func (r *memoryCatalogRepo) CreateCategory(ctx context.Context, name string) (*Category, error) {
	r.nextCategoryID++
	c := &Category{ID: r.nextCategoryID, Name: name, CreatedAt: time.Now()}
	r.categories[c.ID] = c
	return c, nil
}

func (r *memoryCatalogRepo) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memoryCatalogRepo) DeleteCategory(ctx context.Context, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *memoryCatalogRepo) CountProductsByCategory(ctx context.Context, categoryID int64) (int, error) {
	count := 0
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)

	p, err := svc.CreateProduct(ctx, ProductInput{
		Name:              "Lucky Me Pancit Canton",
		Barcode:           "4800016644931",
		Price:             15,
		Cost:              12,
		Stock:             48,
		LowStockThreshold: 10,
	})
	require.NoError(t, err)
	require.Equal(t, "Lucky Me Pancit Canton", p.Name)
	require.Equal(t, 48, p.Stock)
	require.False(t, p.LowStock())
}

func TestCreateProductRequiresName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "  ", Price: 10})
	require.Error(t, err)
	require.Contains(t, err.Error(), "name required")
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Soap", Price: -1})
	require.Error(t, err)
}

func TestCreateProductRejectsDuplicateBarcode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Coke Sakto", Barcode: "1111", Price: 15})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Coke Mismo", Barcode: "1111", Price: 20})
	require.ErrorIs(t, err, ErrDuplicateBarcode)
}

func TestUpdateProductKeepsOwnBarcode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Coke Sakto", Barcode: "1111", Price: 15})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Name: "Coke Sakto 300ml", Barcode: "1111", Price: 16})
	require.NoError(t, err)
	require.Equal(t, "Coke Sakto 300ml", updated.Name)
	require.Equal(t, 16.0, updated.Price)
}

func TestDeleteProductBlockedWhenSold(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Sardinas", Price: 25})
	require.NoError(t, err)

	repo.saleItemCounts[p.ID] = 3
	err = svc.DeleteProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrProductInUse)

	repo.saleItemCounts[p.ID] = 0
	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteCategoryBlockedWhenAssigned(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)

	c, err := svc.CreateCategory(ctx, "Beverages")
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Royal", CategoryID: c.ID, Price: 20})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, c.ID)
	require.ErrorIs(t, err, ErrCategoryInUse)
}

func TestListProductsLowStockFilter(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Full", Price: 10, Stock: 50, LowStockThreshold: 5})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Low", Price: 10, Stock: 2, LowStockThreshold: 5})
	require.NoError(t, err)

	low, err := svc.ListProducts(ctx, ListProductsRequest{LowStockOnly: true})
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Low", low[0].Name)
}
