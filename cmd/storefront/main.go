package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/techshop/storefront/internal/app"
	"github.com/techshop/storefront/internal/auth"
	"github.com/techshop/storefront/internal/masterdata/categories"
	"github.com/techshop/storefront/internal/masterdata/products"
	"github.com/techshop/storefront/internal/observability"
	"github.com/techshop/storefront/internal/platform/cache"
	"github.com/techshop/storefront/internal/platform/db"
	"github.com/techshop/storefront/internal/rbac"
	"github.com/techshop/storefront/internal/reviews"
	"github.com/techshop/storefront/internal/sales/orders"
	"github.com/techshop/storefront/internal/users"
	"github.com/techshop/storefront/internal/wishlist"
	"github.com/techshop/storefront/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := db.Migrate(ctx, dbpool); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, rating cache disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	codec, err := auth.NewTokenCodec([]byte(cfg.TokenSecret))
	if err != nil {
		logger.Error("init token codec", slog.Any("error", err))
		os.Exit(1)
	}
	policy, err := rbac.NewPolicy(rbac.DefaultRules())
	if err != nil {
		logger.Error("compile access policy", slog.Any("error", err))
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	credentials := auth.NewRepository(dbpool)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	authService, err := auth.NewService(credentials, hasher, codec, cfg.TokenTTL)
	if err != nil {
		logger.Error("init auth service", slog.Any("error", err))
		os.Exit(1)
	}
	filter := auth.NewFilter(codec, credentials, policy, logger, auth.WithOutcomeRecorder(metrics))

	categoryService := categories.NewService(categories.NewRepository(dbpool))
	productService := products.NewService(products.NewRepository(dbpool))
	orderService := orders.NewService(orders.NewRepository(dbpool), productService)
	wishlistService := wishlist.NewService(wishlist.NewRepository(dbpool))

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	reviewService := reviews.NewService(
		reviews.NewRepository(dbpool),
		reviews.NewRatingCache(redisClient, cfg.RatingCacheTTL),
		jobsClient,
		logger,
	)

	checks := map[string]app.HealthCheck{
		"postgres": dbpool.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Filter:            filter,
		AuthHandler:       auth.NewHandler(logger, authService),
		UsersHandler:      users.NewHandler(logger, authService),
		ProductsHandler:   products.NewHandler(logger, productService),
		CategoriesHandler: categories.NewHandler(logger, categoryService),
		OrdersHandler:     orders.NewHandler(logger, orderService),
		ReviewsHandler:    reviews.NewHandler(logger, reviewService),
		WishlistHandler:   wishlist.NewHandler(logger, wishlistService),
		Metrics:           metrics,
		HealthChecks:      checks,
		AccessLog:         true,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
