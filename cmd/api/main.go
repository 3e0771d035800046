package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/emekaobi/freshbasket-backend/api/routes"
	cartsvc "github.com/emekaobi/freshbasket-backend/internal/cart"
	checkoutsvc "github.com/emekaobi/freshbasket-backend/internal/checkout"
	"github.com/emekaobi/freshbasket-backend/internal/ledger"
	"github.com/emekaobi/freshbasket-backend/internal/notifications"
	"github.com/emekaobi/freshbasket-backend/internal/orders"
	"github.com/emekaobi/freshbasket-backend/internal/products"
	"github.com/emekaobi/freshbasket-backend/internal/quotes"
	paystackwebhook "github.com/emekaobi/freshbasket-backend/internal/webhooks/paystack"
	"github.com/emekaobi/freshbasket-backend/pkg/config"
	"github.com/emekaobi/freshbasket-backend/pkg/db"
	"github.com/emekaobi/freshbasket-backend/pkg/instance"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"
	"github.com/emekaobi/freshbasket-backend/pkg/metrics"
	"github.com/emekaobi/freshbasket-backend/pkg/migrate"
	"github.com/emekaobi/freshbasket-backend/pkg/paystack"
	"github.com/emekaobi/freshbasket-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paystackClient, err := paystack.NewClient(cfg.Paystack)
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.NewRepository(dbClient.DB()), productsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	quotesService, err := quotes.NewService(quotes.NewRepository(dbClient.DB()), notificationsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotes service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, notificationsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Gateway:     paystackClient,
		Cart:        cartService,
		Quotes:      quotesService,
		Catalog:     productsService,
		CallbackURL: cfg.App.BaseURL + cfg.Paystack.CallbackPath,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookMetrics := metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)

	webhookService, err := paystackwebhook.NewService(paystackwebhook.ServiceParams{
		TransactionRunner: dbClient,
		OrdersRepo:        ordersRepo,
		Ledger:            ledgerService,
		Quotes:            quotesService,
		Cart:              cartService,
		Notifier:          notificationsService,
		Metrics:           webhookMetrics,
		Logger:            logg,
		TxMaxRetries:      cfg.Webhook.TxMaxRetries,
		TxRetryBackoff:    cfg.Webhook.TxRetryBackoff,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := paystackwebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, "paystack-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			paystackClient,
			productsService,
			cartService,
			quotesService,
			ordersService,
			notificationsService,
			checkoutService,
			webhookService,
			webhookGuard,
			webhookMetrics,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
