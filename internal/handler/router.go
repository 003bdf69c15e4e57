package handler

import (
	"context"
	"net/http"
	"time"

	"securebank/internal/clock"
	"securebank/internal/ratelimit"
	"securebank/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions holds the pieces of the router that vary by deployment.
type RouterOptions struct {
	AllowedOrigins []string
	// TrustProxyHeaders rewrites RemoteAddr from X-Real-IP/X-Forwarded-For.
	TrustProxyHeaders bool
	RequestTimeout    time.Duration
	// Limiter is optional; nil disables API rate limiting.
	Limiter ratelimit.Limiter
	Clock   clock.Clock
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Health reports per-dependency failures; an empty map means healthy.
	Health func(ctx context.Context) map[string]error
}

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(services *service.ServiceFactory, opts RouterOptions, logger *zap.Logger) chi.Router {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	router := chi.NewRouter()

	// Middleware stack
	router.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(opts.RequestTimeout))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	base := responder{logger: logger}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Health check requested")
		if opts.Health != nil {
			if failures := opts.Health(r.Context()); len(failures) > 0 {
				details := make(map[string]string, len(failures))
				for name, err := range failures {
					details[name] = err.Error()
				}
				resp := Response{Success: false, Data: details, Error: "unhealthy", Message: "Service unhealthy"}
				base.respondWithJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}
		base.respondWithJSON(w, http.StatusOK, successResponse(map[string]string{
			"status":  "healthy",
			"service": "securebank",
		}, "Service is healthy"))
	})

	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	engine := services.Engine()
	authHandler := NewAuthHandler(engine, services.Alerts(), services.SecurityLog(), logger.Named("auth_handler"))
	bankingHandler := NewBankingHandler(services.Ledger(), logger.Named("banking_handler"))

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(RateLimitMiddleware(opts.Limiter, engine, opts.Clock, services.Alerts(), logger))
		}

		r.Group(func(protected chi.Router) {
			protected.Use(RequireSession(engine, logger))
			authHandler.RegisterRoutes(r, protected)
			bankingHandler.RegisterRoutes(protected)
		})
	})

	// 404 handler
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.respondWithJSON(w, http.StatusNotFound, Response{Success: false, Error: "endpoint not found"})
	})

	// Method not allowed handler
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.respondWithJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
	})

	return router
}
