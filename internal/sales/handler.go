package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sarisari-pos/sarisari/internal/payments"
	"github.com/sarisari-pos/sarisari/internal/shared"
)

// Handler manages sales endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	location *time.Location
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, location *time.Location) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), location: location}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.checkout)
	r.Get("/sales", h.listSales)
	r.Get("/sales/{id}", h.getSale)
	r.Put("/sales/{id}", h.editTransaction)
	r.Delete("/sales/{id}", h.deleteTransaction)
}

type checkoutItem struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type paymentEntry struct {
	Method string   `json:"method" validate:"required"`
	Amount *float64 `json:"amount"`
}

// checkoutRequest accepts the payment either as the raw mop field or as a
// structured payments array. The array wins when both are present.
type checkoutRequest struct {
	Items        []checkoutItem `json:"items" validate:"required,min=1,dive"`
	Discount     float64        `json:"discount" validate:"gte=0"`
	MOP          string         `json:"mop"`
	CustomerName string         `json:"customerName"`
	Payments     []paymentEntry `json:"payments" validate:"omitempty,dive"`
}

func (req checkoutRequest) toInput(cashierID int64) CheckoutInput {
	input := CheckoutInput{
		Discount:     req.Discount,
		MOP:          req.MOP,
		CustomerName: req.CustomerName,
		CashierID:    cashierID,
	}
	for _, item := range req.Items {
		input.Lines = append(input.Lines, LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if len(req.Payments) > 0 {
		entries := make([]payments.Entry, 0, len(req.Payments))
		for _, p := range req.Payments {
			entries = append(entries, payments.Entry{Method: p.Method, Amount: p.Amount})
		}
		input.MOP = payments.Encode(entries)
	}
	return input
}

// checkoutResponse adds the resolved per-method amounts to the stored sale.
// Legacy single-method payments resolve to the full total.
type checkoutResponse struct {
	*Sale
	PaymentBreakdown []payments.Entry `json:"paymentBreakdown"`
}

func breakdownFor(sale *Sale) []payments.Entry {
	entries := payments.Parse(sale.MOP)
	for i := range entries {
		if entries[i].Amount == nil {
			amount := sale.Total
			entries[i].Amount = &amount
		}
	}
	return entries
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSaleNotFound), errors.Is(err, ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrPaymentInsufficient):
		status = http.StatusConflict
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	}
	shared.WriteError(w, status, shared.UserSafeMessage(err))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	actor, _ := shared.ActorFromContext(r.Context())
	sale, err := h.service.Checkout(r.Context(), req.toInput(actor.ID))
	if err != nil {
		h.logger.Error("checkout", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, checkoutResponse{Sale: sale, PaymentBreakdown: breakdownFor(sale)})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req ListSalesRequest
	if raw := q.Get("from"); raw != "" {
		from, err := shared.ParseDate(raw, h.location)
		if err != nil {
			shared.WriteError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		req.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := shared.ParseDate(raw, h.location)
		if err != nil {
			shared.WriteError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		// Inclusive end date, exclusive bound on the following midnight.
		req.To = to.Add(24 * time.Hour)
	}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	sales, err := h.service.ListSales(r.Context(), req)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if sales == nil {
		sales = []Sale{}
	}
	shared.WriteJSON(w, http.StatusOK, sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid sale ID")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sale)
}

func (h *Handler) editTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid sale ID")
		return
	}
	var req checkoutRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	actor, _ := shared.ActorFromContext(r.Context())
	sale, err := h.service.EditTransaction(r.Context(), id, req.toInput(actor.ID))
	if err != nil {
		h.logger.Error("edit transaction", slog.Any("error", err), slog.Int64("id", id))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sale)
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid sale ID")
		return
	}
	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		h.logger.Error("delete transaction", slog.Any("error", err), slog.Int64("id", id))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}
