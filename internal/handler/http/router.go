package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RouterConfig carries the router settings that come from configuration.
type RouterConfig struct {
	CORS       middleware.CORSConfig
	PprofCIDRs []string
	// ProductCacheMaxAge is the Cache-Control max-age of catalog responses, in seconds.
	ProductCacheMaxAge int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	productHandler := NewProductHandler(catalogService, logger)
	r.Route("/api/v1/products", func(r chi.Router) {
		if cfg.ProductCacheMaxAge > 0 {
			r.Use(middleware.CacheControl(cfg.ProductCacheMaxAge))
		}

		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
	})

	cartHandler := NewCartHandler(cartService, logger)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)

		r.Get("/", cartHandler.GetCart)
		r.Post("/", cartHandler.AddItem)
		r.Patch("/{id}", cartHandler.UpdateItemQuantity)
		r.Delete("/{id}", cartHandler.RemoveItem)
	})

	overlayHandler := NewOverlayHandler(catalogService, cartService, logger)
	r.With(middleware.NoStore).Get("/api/v1/overlay", overlayHandler.Resolve)

	return r
}
