package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// Handler manages inventory endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory/movements", h.listMovements)
	r.Post("/inventory/adjustments", h.adjust)
}

type adjustRequest struct {
	ProductID int64  `json:"productId" validate:"required"`
	Change    int    `json:"change" validate:"required"`
	Reason    string `json:"reason"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrNegativeStock):
		status = http.StatusConflict
	case errors.Is(err, ErrInvalidChange):
		status = http.StatusUnprocessableEntity
	}
	shared.WriteError(w, status, shared.UserSafeMessage(err))
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	movement, err := h.service.Adjust(r.Context(), AdjustInput{
		ProductID: req.ProductID,
		Change:    req.Change,
		Reason:    req.Reason,
	})
	if err != nil {
		h.logger.Error("stock adjustment", slog.Any("error", err), slog.Int64("product_id", req.ProductID))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, movement)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter MovementFilter
	filter.ProductID, _ = strconv.ParseInt(q.Get("product_id"), 10, 64)
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("list movements", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if movements == nil {
		movements = []Movement{}
	}
	shared.WriteJSON(w, http.StatusOK, movements)
}
