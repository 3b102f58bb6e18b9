package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/masterdata/categories"
	"github.com/techshop/storefront/internal/masterdata/products"
	"github.com/techshop/storefront/internal/observability"
	"github.com/techshop/storefront/internal/platform/httpx"
	"github.com/techshop/storefront/internal/reviews"
	"github.com/techshop/storefront/internal/sales/orders"
	"github.com/techshop/storefront/internal/users"
	"github.com/techshop/storefront/internal/wishlist"
)

// HealthCheck reports whether a backing service answers.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Filter            *auth.Filter
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	OrdersHandler     *orders.Handler
	ReviewsHandler    *reviews.Handler
	WishlistHandler   *wishlist.Handler
	Metrics           *observability.Metrics
	HealthChecks      map[string]HealthCheck
	AccessLog         bool
}

// NewRouter constructs the chi.Router with storefront defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Filter:  params.Filter,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.AccessLog {
		r.Use(chimw.Logger)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here")
	})

	r.Get("/healthz", healthHandler(params.Logger, params.HealthChecks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/user", params.UsersHandler.MountRoutes)
		}
		if params.ProductsHandler != nil {
			r.Route("/product", params.ProductsHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/category", params.CategoriesHandler.MountRoutes)
		}
		if params.OrdersHandler != nil {
			r.Route("/order", params.OrdersHandler.MountRoutes)
		}
		if params.ReviewsHandler != nil {
			r.Route("/reviews", params.ReviewsHandler.MountRoutes)
		}
		if params.WishlistHandler != nil {
			r.Route("/wishlist", params.WishlistHandler.MountRoutes)
		}
	})

	return r
}

func healthHandler(logger *slog.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", slog.String("check", name), slog.Any("error", err))
				report[name] = "down"
				report["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "up"
		}
		httpx.JSON(w, status, report)
	}
}
