package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// Handler manages report endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	location *time.Location
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, location *time.Location) *Handler {
	return &Handler{logger: logger, service: service, location: location}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/sales", h.salesByPeriod)
	r.Get("/reports/top-products", h.topProducts)
	r.Get("/reports/payment-methods", h.paymentMethods)
	r.Get("/reports/dashboard", h.dashboard)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrInvalidPeriod) {
		status = http.StatusUnprocessableEntity
	}
	shared.WriteError(w, status, shared.UserSafeMessage(err))
}

// parseRange reads optional from/to query dates; the "to" bound is inclusive.
func (h *Handler) parseRange(r *http.Request) (RangeRequest, error) {
	var rng RangeRequest
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		from, err := shared.ParseDate(raw, h.location)
		if err != nil {
			return rng, err
		}
		rng.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := shared.ParseDate(raw, h.location)
		if err != nil {
			return rng, err
		}
		rng.To = to.Add(24 * time.Hour)
	}
	return rng, nil
}

func (h *Handler) salesByPeriod(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = PeriodDaily
	}
	rng, err := h.parseRange(r)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	buckets, err := h.service.SalesByPeriod(r.Context(), period, rng)
	if err != nil {
		h.logger.Error("sales by period", slog.Any("error", err), slog.String("period", period))
		h.writeError(w, err)
		return
	}
	if buckets == nil {
		buckets = []PeriodBucket{}
	}
	shared.WriteJSON(w, http.StatusOK, buckets)
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.service.TopProducts(r.Context(), rng, limit)
	if err != nil {
		h.logger.Error("top products", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if products == nil {
		products = []TopProduct{}
	}
	shared.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	breakdown, err := h.service.PaymentMethodBreakdown(r.Context(), rng)
	if err != nil {
		h.logger.Error("payment method breakdown", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}
