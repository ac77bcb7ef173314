package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplivehq/shoplive-backend/api/controllers"
	cartcontrollers "github.com/shoplivehq/shoplive-backend/api/controllers/cart"
	checkoutcontrollers "github.com/shoplivehq/shoplive-backend/api/controllers/checkout"
	paymentcontrollers "github.com/shoplivehq/shoplive-backend/api/controllers/payments"
	"github.com/shoplivehq/shoplive-backend/api/middleware"
	"github.com/shoplivehq/shoplive-backend/internal/cart"
	checkoutsvc "github.com/shoplivehq/shoplive-backend/internal/checkout"
	"github.com/shoplivehq/shoplive-backend/internal/payments"
	"github.com/shoplivehq/shoplive-backend/pkg/config"
	"github.com/shoplivehq/shoplive-backend/pkg/logger"
	"github.com/shoplivehq/shoplive-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisP redis.Pinger,
	idemStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	paymentsClient *payments.Client,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisP))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionContext(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutcontrollers.CheckoutStart(checkoutService, logg))
			r.Get("/", checkoutcontrollers.CheckoutFetch(checkoutService, logg))
			r.Post("/confirm", checkoutcontrollers.CheckoutConfirm(checkoutService, logg))
			r.Post("/back", checkoutcontrollers.CheckoutBack(checkoutService, logg))
			r.Post("/payment-method", checkoutcontrollers.CheckoutSelectMethod(checkoutService, logg))
			r.Post("/submit", checkoutcontrollers.CheckoutSubmit(checkoutService, logg))
			r.Post("/close", checkoutcontrollers.CheckoutClose(checkoutService, logg))
		})

		r.Get("/payments/methods", paymentcontrollers.PaymentMethods(paymentsClient, logg))
	})

	return r
}
