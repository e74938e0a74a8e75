package reconcile

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

// Handler manages reconciliation endpoints.
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

// MountRoutes registers reconciliation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/reconciliation/close", h.closeDay)
	r.Get("/reconciliation/today", h.today)
	r.Get("/reconciliation/history", h.history)
	r.Get("/reconciliation/{date}", h.getByDate)

	r.Get("/starting-cash", h.getStartingCash)
	r.Put("/starting-cash", h.setStartingCash)
}

type closeDayRequest struct {
	Date       string  `json:"date"`
	ActualCash float64 `json:"actualCash" validate:"gte=0"`
	Notes      string  `json:"notes"`
}

type startingCashRequest struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotClosed), errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrAlreadyClosed):
		status = http.StatusConflict
	case errors.Is(err, ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	}
	shared.WriteError(w, status, shared.UserSafeMessage(err))
}

// parseDate reads an optional YYYY-MM-DD value; empty means the current day.
func (h *Handler) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return shared.ParseDate(raw, h.location)
}

func (h *Handler) closeDay(w http.ResponseWriter, r *http.Request) {
	var req closeDayRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	date, err := h.parseDate(req.Date)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}

	actor, _ := shared.ActorFromContext(r.Context())
	rec, err := h.service.CloseDay(r.Context(), CloseDayInput{
		Date:       date,
		ActualCash: req.ActualCash,
		Notes:      req.Notes,
		ClosedBy:   actor.ID,
	})
	if err != nil {
		h.logger.Error("close day", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context(), time.Time{})
	if err != nil {
		h.logger.Error("day snapshot", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) getByDate(w http.ResponseWriter, r *http.Request) {
	date, err := shared.ParseDate(chi.URLParam(r, "date"), h.location)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}
	rec, err := h.service.GetByDate(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := h.parseDate(q.Get("from"))
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := h.parseDate(q.Get("to"))
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	records, err := h.service.History(r.Context(), from, to, limit)
	if err != nil {
		h.logger.Error("reconciliation history", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if records == nil {
		records = []Reconciliation{}
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) getStartingCash(w http.ResponseWriter, r *http.Request) {
	date, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}
	float, err := h.service.GetStartingCash(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, float)
}

func (h *Handler) setStartingCash(w http.ResponseWriter, r *http.Request) {
	var req startingCashRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	date, err := h.parseDate(req.Date)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}

	actor, _ := shared.ActorFromContext(r.Context())
	float, err := h.service.SetStartingCash(r.Context(), date, req.Amount, actor.ID)
	if err != nil {
		h.logger.Error("set starting cash", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, float)
}
