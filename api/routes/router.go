package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/designdrip/storefront-core/api/controllers"
	"github.com/designdrip/storefront-core/api/middleware"
	cartsvc "github.com/designdrip/storefront-core/internal/cart"
	checkoutsvc "github.com/designdrip/storefront-core/internal/checkout"
	orderssvc "github.com/designdrip/storefront-core/internal/orders"
	"github.com/designdrip/storefront-core/internal/paymentmethods"
	"github.com/designdrip/storefront-core/internal/shipping"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/db"
	"github.com/designdrip/storefront-core/pkg/logger"
	"github.com/designdrip/storefront-core/pkg/money"
	"github.com/designdrip/storefront-core/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Registry    *prometheus.Registry
	Coordinator *checkoutsvc.Coordinator
	InfoService *checkoutsvc.InfoService
	Shipping    *shipping.Resolver
	Methods     paymentmethods.Service
	Sessions    *paymentmethods.SessionRegistry
	Cart        cartsvc.Service
	Selections  *cartsvc.SelectionRegistry
	Display     money.Formatter
	Orders      orderssvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.Logger))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/info", controllers.CheckoutInfo(p.InfoService, p.Sessions, p.Selections, p.Logger))
			r.Post("/quote", controllers.CheckoutQuote(p.InfoService, p.Shipping, p.Selections, p.Display, p.Logger))
			r.With(middleware.SubmitRateLimit(p.Config.RateLimit, p.Redis, p.Logger)).
				Post("/", controllers.CheckoutSubmit(p.Coordinator, p.InfoService, p.Shipping, p.Redis, p.Sessions, p.Selections, p.Logger))
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", controllers.PaymentMethodList(p.Methods, p.Logger))
			r.Post("/", controllers.PaymentMethodAttach(p.Methods, p.Sessions, p.Logger))
			r.Post("/setup-intent", controllers.PaymentMethodSetupIntent(p.Methods, p.Sessions, p.Logger))
			r.Delete("/setup-intent", controllers.PaymentMethodCancelAdd(p.Sessions, p.Logger))
			r.Put("/selection", controllers.PaymentMethodSelect(p.Sessions, p.Logger))
			r.Post("/{paymentMethodId}/default", controllers.PaymentMethodSetDefault(p.Methods, p.Logger))
			r.Delete("/{paymentMethodId}", controllers.PaymentMethodDelete(p.Methods, p.Logger))
		})

		r.Get("/cart", controllers.CartFetch(p.Cart, p.Display, p.Logger))
		r.Route("/cart/selection", func(r chi.Router) {
			r.Get("/", controllers.CartSelection(p.Cart, p.Selections, p.Display, p.Logger))
			r.Post("/toggle", controllers.CartSelectionToggle(p.Selections, p.Logger))
			r.Post("/all", controllers.CartSelectionAll(p.Cart, p.Selections, p.Logger))
			r.Delete("/", controllers.CartSelectionClear(p.Selections, p.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(p.Orders, p.Logger))
			r.Get("/{orderId}", controllers.OrderDetail(p.Orders, p.Logger))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(p.Orders, p.Logger))
		})
	})

	return r
}
