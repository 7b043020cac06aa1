package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopmasterhq/shopmaster-backend/api/controllers"
	"github.com/shopmasterhq/shopmaster-backend/api/middleware"
	"github.com/shopmasterhq/shopmaster-backend/internal/cart"
	"github.com/shopmasterhq/shopmaster-backend/internal/catalog"
	"github.com/shopmasterhq/shopmaster-backend/internal/reports"
	"github.com/shopmasterhq/shopmaster-backend/internal/sales"
	"github.com/shopmasterhq/shopmaster-backend/pkg/config"
	"github.com/shopmasterhq/shopmaster-backend/pkg/db"
	"github.com/shopmasterhq/shopmaster-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	catalogService catalog.Service,
	cartService cart.Service,
	salesService sales.Service,
	reportsService reports.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", controllers.ListCategories(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Get("/low-stock", controllers.ListLowStock(catalogService, logg))
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(catalogService, logg))
				r.Patch("/", controllers.UpdateProduct(catalogService, logg))
				r.Post("/stock", controllers.AdjustProductStock(catalogService, logg))
				r.Get("/movements", controllers.ListProductMovements(catalogService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.TillSession(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(cartService, logg))
				r.Delete("/", controllers.ClearCart(cartService, logg))
				r.Post("/items", controllers.AddCartItem(cartService, logg))
				r.Post("/weighed-items", controllers.AddWeighedCartItem(cartService, logg))
				r.Post("/remove-line", controllers.RemoveCartLine(cartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(cartService, salesService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SaleHistory(salesService, cfg.Reports, logg))
			r.Post("/", controllers.CommitSale(salesService, logg))
			r.Get("/{saleID}", controllers.GetSale(salesService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.ShopSummary(reportsService, logg))
			r.Get("/revenue-trend", controllers.RevenueTrend(reportsService, logg))
			r.Get("/categories", controllers.CategoryBreakdown(reportsService, logg))
			r.Get("/overview", controllers.BusinessOverview(reportsService, logg))
		})
	})

	return r
}
