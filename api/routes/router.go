package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emekaobi/freshbasket-backend/api/controllers"
	webhookcontrollers "github.com/emekaobi/freshbasket-backend/api/controllers/webhooks"
	"github.com/emekaobi/freshbasket-backend/api/middleware"
	cartsvc "github.com/emekaobi/freshbasket-backend/internal/cart"
	checkoutsvc "github.com/emekaobi/freshbasket-backend/internal/checkout"
	"github.com/emekaobi/freshbasket-backend/internal/notifications"
	"github.com/emekaobi/freshbasket-backend/internal/orders"
	"github.com/emekaobi/freshbasket-backend/internal/products"
	"github.com/emekaobi/freshbasket-backend/internal/quotes"
	paystackwebhook "github.com/emekaobi/freshbasket-backend/internal/webhooks/paystack"
	"github.com/emekaobi/freshbasket-backend/pkg/config"
	"github.com/emekaobi/freshbasket-backend/pkg/db"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"
	"github.com/emekaobi/freshbasket-backend/pkg/metrics"
	"github.com/emekaobi/freshbasket-backend/pkg/paystack"
	"github.com/emekaobi/freshbasket-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	paystackClient *paystack.Client,
	productsService products.Service,
	cartService cartsvc.Service,
	quotesService quotes.Service,
	ordersService orders.Service,
	notificationsService notifications.Service,
	checkoutService checkoutsvc.Service,
	webhookService *paystackwebhook.Service,
	webhookGuard *paystackwebhook.IdempotencyGuard,
	webhookMetrics *metrics.WebhookMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paystack", webhookcontrollers.PaystackWebhook(webhookService, paystackClient, webhookGuard, webhookMetrics, logg))
	})

	// Public catalog.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productsService, logg))
		r.Get("/{productId}", controllers.GetProduct(productsService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.RateLimit(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Put("/", controllers.CartUpsert(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Delete("/{productId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", controllers.QuoteSubmit(quotesService, logg))
			r.Get("/", controllers.QuoteList(quotesService, logg))
			r.Get("/{quoteId}", controllers.QuoteDetail(quotesService, logg))
			r.Post("/{quoteId}/accept", controllers.QuoteAccept(quotesService, logg))
			r.Post("/{quoteId}/reject", controllers.QuoteReject(quotesService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/cart", controllers.CheckoutCart(checkoutService, logg))
			r.Post("/quotes/{quoteId}", controllers.CheckoutQuote(checkoutService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(productsService, logg))
				r.Put("/", controllers.AdminUpsertProduct(productsService, logg))
				r.Post("/{productId}/restock", controllers.AdminRestockProduct(productsService, logg))
				r.Patch("/{productId}/active", controllers.AdminSetProductActive(productsService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(ordersService, logg))
				r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", controllers.AdminQuoteList(quotesService, logg))
				r.Post("/{quoteId}/price", controllers.AdminQuotePrice(quotesService, logg))
				r.Post("/{quoteId}/expire", controllers.AdminQuoteExpire(quotesService, logg))
			})
		})
	})

	return r
}
