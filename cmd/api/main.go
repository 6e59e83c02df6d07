package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/sarishop/sarishop-backend/api/routes"
	categorysvc "github.com/sarishop/sarishop-backend/internal/categories"
	customersvc "github.com/sarishop/sarishop-backend/internal/customers"
	ordersvc "github.com/sarishop/sarishop-backend/internal/orders"
	paymentsvc "github.com/sarishop/sarishop-backend/internal/payments"
	productsvc "github.com/sarishop/sarishop-backend/internal/products"
	shopsvc "github.com/sarishop/sarishop-backend/internal/shop"
	stripewebhook "github.com/sarishop/sarishop-backend/internal/webhooks/stripe"
	"github.com/sarishop/sarishop-backend/pkg/config"
	"github.com/sarishop/sarishop-backend/pkg/db"
	"github.com/sarishop/sarishop-backend/pkg/logger"
	"github.com/sarishop/sarishop-backend/pkg/migrate"
	"github.com/sarishop/sarishop-backend/pkg/redis"
	"github.com/sarishop/sarishop-backend/pkg/stripe"
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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	categoryRepo := categorysvc.NewRepository(conn)
	productRepo := productsvc.NewRepository(conn)
	customerRepo := customersvc.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)
	shopRepo := shopsvc.NewRepository(conn)

	productService, err := productsvc.NewService(productRepo, categoryRepo)
	exitOnError(logg, "product service", err)

	categoryService, err := categorysvc.NewService(categoryRepo, productRepo)
	exitOnError(logg, "category service", err)

	shopService, err := shopsvc.NewService(shopRepo, orderRepo, productRepo, customerRepo)
	exitOnError(logg, "shop service", err)

	orderService, err := ordersvc.NewService(orderRepo, productRepo, shopService, dbClient)
	exitOnError(logg, "order service", err)

	customerService, err := customersvc.NewService(customerRepo, orderRepo, dbClient, cfg.JWT, cfg.Password)
	exitOnError(logg, "customer service", err)

	paymentService, err := paymentsvc.NewService(orderRepo, stripeClient, logg)
	exitOnError(logg, "payment service", err)

	webhookService, err := stripewebhook.NewService(orderRepo, productRepo, dbClient, logg)
	exitOnError(logg, "webhook service", err)

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.EventTTL, "stripe-webhook")
	exitOnError(logg, "webhook guard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, stripeClient, webhookGuard, routes.Services{
			Categories: categoryService,
			Products:   productService,
			Customers:  customerService,
			Orders:     orderService,
			Payments:   paymentService,
			Shop:       shopService,
			Webhook:    webhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+what, err)
		os.Exit(1)
	}
}
