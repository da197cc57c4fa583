package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/whitepeony/storefront/internal/service"
	"github.com/whitepeony/storefront/pkg/health"
	"github.com/whitepeony/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cartService *service.CartService,
	wishlistService *service.WishlistService,
	sessionService *service.SessionService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	cartHandler := NewCartHandler(cartService, logger)
	wishlistHandler := NewWishlistHandler(wishlistService, logger)
	sessionHandler := NewSessionHandler(sessionService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(UserIDFromHeader)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Put("/items/{productID}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)

			r.Get("/coupons", cartHandler.ListCoupons)
			r.Post("/coupon", cartHandler.ApplyCoupon)
			r.Delete("/coupon", cartHandler.RemoveCoupon)
		})

		r.Post("/checkout", cartHandler.PlaceOrder)

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.List)
			r.Post("/items", wishlistHandler.Add)
			r.Get("/items/{productID}", wishlistHandler.Status)
			r.Delete("/items/{productID}", wishlistHandler.Remove)
			r.Post("/items/{productID}/toggle", wishlistHandler.Toggle)
			r.Post("/refresh", wishlistHandler.Refresh)
		})

		r.Put("/session", sessionHandler.Start)
		r.Delete("/session", sessionHandler.End)
	})

	return r
}
