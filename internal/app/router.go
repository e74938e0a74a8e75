package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarisari-pos/sarisari/internal/auth"
	"github.com/sarisari-pos/sarisari/internal/catalog"
	"github.com/sarisari-pos/sarisari/internal/expenses"
	"github.com/sarisari-pos/sarisari/internal/inventory"
	"github.com/sarisari-pos/sarisari/internal/reconcile"
	"github.com/sarisari-pos/sarisari/internal/reports"
	"github.com/sarisari-pos/sarisari/internal/sales"
	"github.com/sarisari-pos/sarisari/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	SalesHandler     *sales.Handler
	InventoryHandler *inventory.Handler
	ExpensesHandler  *expenses.Handler
	ReconcileHandler *reconcile.Handler
	ReportsHandler   *reports.Handler
	Pool             *pgxpool.Pool
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthz(params.Pool))

	r.Route("/api", func(api chi.Router) {
		params.AuthHandler.MountPublicRoutes(api)

		api.Group(func(private chi.Router) {
			private.Use(params.AuthService.Middleware())

			params.AuthHandler.MountRoutes(private)
			params.CatalogHandler.MountRoutes(private)
			params.SalesHandler.MountRoutes(private)
			params.InventoryHandler.MountRoutes(private)
			params.ExpensesHandler.MountRoutes(private)
			params.ReconcileHandler.MountRoutes(private)
			params.ReportsHandler.MountRoutes(private)

			private.Group(func(admin chi.Router) {
				admin.Use(auth.RequireAdmin)
				params.AuthHandler.MountAdminRoutes(admin)
			})
		})
	})

	return r
}

func healthz(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				shared.WriteError(w, http.StatusServiceUnavailable, "database unreachable")
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
