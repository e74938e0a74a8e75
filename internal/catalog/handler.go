package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// Handler manages catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/barcode/{code}", h.getProductByBarcode)
	r.Get("/products/{id}", h.getProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Delete("/categories/{id}", h.deleteCategory)
}

type productRequest struct {
	Name              string  `json:"name" validate:"required"`
	Barcode           string  `json:"barcode"`
	CategoryID        int64   `json:"categoryId"`
	Price             float64 `json:"price" validate:"gte=0"`
	Cost              float64 `json:"cost" validate:"gte=0"`
	Stock             int     `json:"stock" validate:"gte=0"`
	LowStockThreshold int     `json:"lowStockThreshold" validate:"gte=0"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrCategoryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrProductInUse), errors.Is(err, ErrCategoryInUse), errors.Is(err, ErrDuplicateBarcode):
		status = http.StatusConflict
	}
	shared.WriteError(w, status, shared.UserSafeMessage(err))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("category_id"), 10, 64)
	products, err := h.service.ListProducts(r.Context(), ListProductsRequest{
		Search:       q.Get("search"),
		CategoryID:   categoryID,
		LowStockOnly: q.Get("low_stock") == "true",
	})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	shared.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	product, err := h.service.CreateProduct(r.Context(), ProductInput{
		Name:              req.Name,
		Barcode:           req.Barcode,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		Cost:              req.Cost,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, product)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) getProductByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProductByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	var req productRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), id, ProductInput{
		Name:              req.Name,
		Barcode:           req.Barcode,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		Cost:              req.Cost,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		h.logger.Error("update product", slog.Any("error", err), slog.Int64("id", id))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.logger.Error("delete product", slog.Any("error", err), slog.Int64("id", id))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if categories == nil {
		categories = []Category{}
	}
	shared.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	category, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("create category", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid category ID")
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.logger.Error("delete category", slog.Any("error", err), slog.Int64("id", id))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
