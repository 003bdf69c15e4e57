package handler

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"securebank/internal/clock"
	"securebank/internal/metrics"
	"securebank/internal/models"
	"securebank/internal/ratelimit"
	"securebank/internal/service"
	"securebank/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const rateLimitMessage = "Rate limit exceeded. Please try again later."

var errRateLimited = errors.New("rate limit exceeded")

// LoggerMiddleware creates a middleware that logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("HTTP request",
					util.String("request_id", middleware.GetReqID(r.Context())),
					util.String("method", r.Method),
					util.String("path", r.URL.Path),
					util.String("remote_addr", r.RemoteAddr),
					util.Int("status", ww.Status()),
					util.Duration("duration", time.Since(start)),
					util.String("user_agent", r.UserAgent()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// MetricsMiddleware records request counts and latencies by route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.Status())
		metrics.RequestCount.WithLabelValues(r.Method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// RateLimitMiddleware caps API calls per client. Clients are keyed by session
// token when the request carries the live one, else by remote host. Limiter
// errors let the request through.
func RateLimitMiddleware(limiter ratelimit.Limiter, engine *service.Engine, clk clock.Clock, alerts *service.AlertCenter, logger *zap.Logger) func(http.Handler) http.Handler {
	h := responder{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r, engine)

			allowed, retryAfter, err := limiter.Allow(r.Context(), key, clk.Now())
			if err != nil {
				logger.Warn("Rate limiter unavailable", util.ErrorField(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				alerts.Show(models.AlertError, rateLimitMessage)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				h.respondWithError(w, http.StatusTooManyRequests, errRateLimited, rateLimitMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitKey ignores tokens that do not authenticate and the source port,
// so neither can be varied to get a fresh window.
func rateLimitKey(r *http.Request, engine *service.Engine) string {
	if token := bearerToken(r); token != "" {
		if _, err := engine.Authenticate(token); err == nil {
			return "token:" + token
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// RequireSession rejects requests whose bearer token is not the live session
// token, and counts accepted requests as user activity.
func RequireSession(engine *service.Engine, logger *zap.Logger) func(http.Handler) http.Handler {
	h := responder{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := engine.Authenticate(bearerToken(r)); err != nil {
				h.respondWithServiceError(w, err, "Authentication required")
				return
			}
			if err := engine.RecordActivity(); err != nil {
				h.respondWithServiceError(w, err, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
