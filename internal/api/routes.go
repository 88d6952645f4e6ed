package api

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/pkg/ratelimit"
)

// SetupRoutes configures the router. limiter may be nil, which disables
// rate limiting on the subscribe endpoint.
func SetupRoutes(h *Handlers, limiter *ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// The subscribe form is posted cross-origin from the site frontend.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.With(subscribeRateLimit(limiter)).Post("/subscriptions", h.Subscribe)
	r.Get("/subscriptions/confirm", h.Confirm)

	r.Post("/admin/newsletter", h.DispatchNewsletter)

	return r
}

// subscribeRateLimit applies a per-IP fixed-window limit. Redis being
// down fails open: subscriptions keep working unthrottled.
func subscribeRateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}
			ok, err := limiter.Allow(r.Context(), "subscribe:"+key)
			if err != nil {
				logger.Warn("rate limiter unavailable, failing open", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				httputil.TooManyRequests(w, "too many subscription attempts, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
