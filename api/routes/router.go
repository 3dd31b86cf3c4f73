package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/priceworks/discount-engine/api/controllers"
	"github.com/priceworks/discount-engine/api/middleware"
	pricingsvc "github.com/priceworks/discount-engine/internal/pricing"
	rulesvc "github.com/priceworks/discount-engine/internal/rules"
	settingsvc "github.com/priceworks/discount-engine/internal/settings"
	usagesvc "github.com/priceworks/discount-engine/internal/usage"
	"github.com/priceworks/discount-engine/pkg/config"
	"github.com/priceworks/discount-engine/pkg/db"
	"github.com/priceworks/discount-engine/pkg/logger"
	"github.com/priceworks/discount-engine/pkg/redis"
)

// NewRouter assembles the HTTP surface of the discount engine.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	rulesService rulesvc.Service,
	settingsService settingsvc.Service,
	pricingService pricingsvc.Service,
	usageService usagesvc.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.CORS(),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", controllers.ListRules(rulesService, logg))
			r.Post("/", controllers.CreateRule(rulesService, logg))
			r.Get("/{ruleId}", controllers.GetRule(rulesService, logg))
			r.Patch("/{ruleId}", controllers.UpdateRule(rulesService, logg))
			r.Delete("/{ruleId}", controllers.DeleteRule(rulesService, logg))
			r.Get("/{ruleId}/usage", controllers.ListRuleUsage(rulesService, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(settingsService, logg))
			r.Put("/", controllers.UpdateSetting(settingsService, logg))
		})

		r.Post("/cart/quote", controllers.CartQuote(pricingService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/price", controllers.ProductPrice(pricingService, logg))
			r.Get("/{productId}/bulk-table", controllers.ProductBulkTable(pricingService, logg))
		})

		r.Post("/orders/{orderId}/completed", controllers.OrderCompleted(usageService, logg))
	})

	return r
}
