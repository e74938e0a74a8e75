package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// Handler manages expense endpoints.
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

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/expenses", h.listExpenses)
	r.Post("/expenses", h.recordExpense)
	r.Delete("/expenses/{id}", h.deleteExpense)
	r.Get("/expense-types", h.listTypes)
}

type expenseRequest struct {
	Type   string  `json:"type" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note"`
	Date   string  `json:"date"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrTypeRequired):
		status = http.StatusUnprocessableEntity
	}
	shared.WriteError(w, status, shared.UserSafeMessage(err))
}

func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	input := ExpenseInput{TypeName: req.Type, Amount: req.Amount, Note: req.Note}
	if req.Date != "" {
		spentAt, err := shared.ParseDate(req.Date, h.location)
		if err != nil {
			shared.WriteError(w, http.StatusBadRequest, "invalid date")
			return
		}
		input.SpentAt = spentAt
	}

	expense, err := h.service.RecordExpense(r.Context(), input)
	if err != nil {
		h.logger.Error("record expense", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, expense)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req ListExpensesRequest
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
		req.To = to.Add(24 * time.Hour)
	}
	req.TypeID, _ = strconv.ParseInt(q.Get("type_id"), 10, 64)
	req.Limit, _ = strconv.Atoi(q.Get("limit"))

	expenses, err := h.service.ListExpenses(r.Context(), req)
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if expenses == nil {
		expenses = []Expense{}
	}
	shared.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}
	if err := h.service.DeleteExpense(r.Context(), id); err != nil {
		h.logger.Error("delete expense", slog.Any("error", err), slog.Int64("id", id))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

func (h *Handler) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListTypes(r.Context())
	if err != nil {
		h.logger.Error("list expense types", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if types == nil {
		types = []ExpenseType{}
	}
	shared.WriteJSON(w, http.StatusOK, types)
}
