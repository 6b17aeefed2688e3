package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/designdrip/storefront-core/api/routes"
	cartsvc "github.com/designdrip/storefront-core/internal/cart"
	checkoutsvc "github.com/designdrip/storefront-core/internal/checkout"
	orderssvc "github.com/designdrip/storefront-core/internal/orders"
	"github.com/designdrip/storefront-core/internal/paymentmethods"
	"github.com/designdrip/storefront-core/internal/resume"
	"github.com/designdrip/storefront-core/internal/shipping"
	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/db"
	"github.com/designdrip/storefront-core/pkg/logger"
	"github.com/designdrip/storefront-core/pkg/metrics"
	"github.com/designdrip/storefront-core/pkg/money"
	"github.com/designdrip/storefront-core/pkg/redis"
	"github.com/designdrip/storefront-core/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-core"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-core",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.LocalDB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to initialize stripe", err)
		os.Exit(1)
	}

	backendClient, err := backend.NewClient(cfg.Backend)
	if err != nil {
		logg.Error(ctx, "failed to initialize backend client", err)
		os.Exit(1)
	}

	pendingStore, err := resume.NewStore(dbClient.DB())
	if err != nil {
		logg.Error(ctx, "failed to initialize pending store", err)
		os.Exit(1)
	}
	if err := pendingStore.Migrate(ctx); err != nil {
		logg.Error(ctx, "failed to migrate pending store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	shippingResolver := shipping.NewResolver(cfg.Shipping)

	infoService, err := checkoutsvc.NewInfoService(backendClient, redisClient, cfg.Cache)
	if err != nil {
		logg.Error(ctx, "failed to create checkout info service", err)
		os.Exit(1)
	}

	coordinator, err := checkoutsvc.NewCoordinator(checkoutsvc.CoordinatorParams{
		Submitter: backendClient,
		Confirmer: stripeClient,
		Pending:   pendingStore,
		Metrics:   checkoutMetrics,
		Logger:    logg,
		ReturnURL: cfg.Backend.ReturnURL,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout coordinator", err)
		os.Exit(1)
	}

	methodsService, err := paymentmethods.NewService(paymentmethods.ServiceParams{
		Store: backendClient,
		Cache: redisClient,
		TTLs:  cfg.Cache,
	})
	if err != nil {
		logg.Error(ctx, "failed to create payment methods service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Store: backendClient,
		Cache: redisClient,
		TTLs:  cfg.Cache,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orderssvc.NewService(orderssvc.ServiceParams{
		Store: backendClient,
		Cache: redisClient,
		TTLs:  cfg.Cache,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	reconciler, err := resume.NewReconciler(resume.ReconcilerParams{
		Store:   pendingStore,
		Checker: stripeClient,
		Logger:  logg,
		Config:  cfg.Resume,
	})
	if err != nil {
		logg.Error(ctx, "failed to create reconciler", err)
		os.Exit(1)
	}
	go func() {
		if err := reconciler.Run(ctx); err != nil {
			logg.Error(ctx, "pending intent reconciliation finished with errors", err)
		}
	}()

	handler := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Registry:    registry,
		Coordinator: coordinator,
		InfoService: infoService,
		Shipping:    shippingResolver,
		Methods:     methodsService,
		Sessions:    paymentmethods.NewSessionRegistry(),
		Cart:        cartService,
		Selections:  cartsvc.NewSelectionRegistry(),
		Display:     money.Formatter{Symbol: cfg.Shipping.CurrencySymbol},
		Orders:      ordersService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting storefront core")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(startCtx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
		}
	}
}
