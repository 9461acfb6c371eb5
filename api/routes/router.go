package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gearmart-backend/api/controllers"
	"github.com/angelmondragon/gearmart-backend/api/middleware"
	"github.com/angelmondragon/gearmart-backend/internal/cart"
	"github.com/angelmondragon/gearmart-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/gearmart-backend/internal/checkout"
	"github.com/angelmondragon/gearmart-backend/internal/events"
	"github.com/angelmondragon/gearmart-backend/internal/profile"
	"github.com/angelmondragon/gearmart-backend/pkg/config"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/gearmart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	catalogService catalog.Service,
	cartStore *cart.Store,
	checkoutService checkoutsvc.Service,
	profileProvider profile.Provider,
	eventChannel *events.Channel,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var idempotencyStore pkgredis.IdempotencyStore
	var redisPinger controllers.Pinger
	if redisClient != nil {
		idempotencyStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductsList(catalogService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartStore, logg))
			r.Delete("/", controllers.CartClear(cartStore, logg))
			r.Get("/stream", controllers.CartStream(cartStore, logg))
			r.Post("/items", controllers.CartAddItem(cartStore, catalogService, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(cartStore, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartStore, logg))
		})

		r.With(middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg)).
			Post("/checkout", controllers.CheckoutCreate(checkoutService, profileProvider, logg))

		r.Get("/orders/last", controllers.OrdersLast(checkoutService, logg))
		r.Get("/events/stream", controllers.EventStream(eventChannel, logg))
	})

	return r
}
