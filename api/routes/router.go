package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sarishop/sarishop-backend/api/controllers"
	webhookcontrollers "github.com/sarishop/sarishop-backend/api/controllers/webhooks"
	"github.com/sarishop/sarishop-backend/api/middleware"
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
	"github.com/sarishop/sarishop-backend/pkg/redis"
	"github.com/sarishop/sarishop-backend/pkg/stripe"
)

// Services bundles the domain services the router mounts.
type Services struct {
	Categories categorysvc.Service
	Products   productsvc.Service
	Customers  customersvc.Service
	Orders     ordersvc.Service
	Payments   paymentsvc.Service
	Shop       shopsvc.Service
	Webhook    *stripewebhook.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	stripeClient *stripe.Client,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.CORS),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy("login", time.Minute, 20, 5)
	registerPolicy := middleware.NewAuthRateLimitPolicy("register", time.Minute, 10, 3)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(svcs.Webhook, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Customers, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Customers, logg))
	})

	// Public storefront surface
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(svcs.Categories, false, logg))
		r.Get("/tree", controllers.CategoryTree(svcs.Categories, false, logg))
		r.Get("/{categoryId}", controllers.GetCategory(svcs.Categories, logg))
	})
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(svcs.Products, false, logg))
		r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))
	})
	r.Get("/api/v1/shop/settings", controllers.GetShopSettings(svcs.Shop, logg))

	// Authenticated customer surface
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/api/v1/me", func(r chi.Router) {
			r.Get("/", controllers.Me(svcs.Customers, logg))
			r.Put("/", controllers.UpdateMe(svcs.Customers, logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Get("/", controllers.ListMyOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.GetMyOrder(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(svcs.Orders, logg))
		})

		r.Route("/api/v1/payments", func(r chi.Router) {
			r.Post("/intent", controllers.CreatePaymentIntent(svcs.Payments, logg))
			r.Post("/confirm", controllers.ConfirmPayment(svcs.Payments, logg))
		})
	})

	// Admin surface
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svcs.Categories, true, logg))
			r.Get("/tree", controllers.CategoryTree(svcs.Categories, true, logg))
			r.Get("/search", controllers.SearchCategories(svcs.Categories, logg))
			r.Post("/", controllers.AdminCreateCategory(svcs.Categories, logg))
			r.Get("/{categoryId}", controllers.GetCategory(svcs.Categories, logg))
			r.Put("/{categoryId}", controllers.AdminUpdateCategory(svcs.Categories, logg))
			r.Patch("/{categoryId}/status", controllers.AdminToggleCategoryStatus(svcs.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(svcs.Categories, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, true, logg))
			r.Get("/low-stock", controllers.AdminLowStockProducts(svcs.Products, logg))
			r.Post("/", controllers.AdminCreateProduct(svcs.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(svcs.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(svcs.Products, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.AdminListCustomers(svcs.Customers, logg))
			r.Get("/{customerId}", controllers.AdminGetCustomer(svcs.Customers, logg))
			r.Put("/{customerId}", controllers.AdminUpdateCustomer(svcs.Customers, logg))
			r.Put("/{customerId}/status", controllers.AdminSetCustomerStatus(svcs.Customers, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(svcs.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminSetOrderStatus(svcs.Orders, logg))
			r.Post("/{orderId}/refund", controllers.AdminRefundOrder(svcs.Payments, logg))
		})

		r.Route("/shop", func(r chi.Router) {
			r.Get("/settings", controllers.GetShopSettings(svcs.Shop, logg))
			r.Put("/settings", controllers.AdminUpdateShopSettings(svcs.Shop, logg))
			r.Put("/settings/logo", controllers.AdminSetShopLogo(svcs.Shop, logg))
			r.Put("/settings/favicon", controllers.AdminSetShopFavicon(svcs.Shop, logg))
			r.Put("/settings/theme", controllers.AdminUpdateShopTheme(svcs.Shop, logg))
			r.Put("/settings/maintenance", controllers.AdminSetMaintenanceMode(svcs.Shop, logg))
			r.Get("/stats", controllers.AdminShopStats(svcs.Shop, logg))
		})
	})

	return r
}
