package middlewares

import (
	"net/http"
	"path"
	"strconv"
	"time"

	httperrors "github.com/dropDatabas3/keyward/internal/http/errors"
	"github.com/dropDatabas3/keyward/internal/metrics"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
	"github.com/dropDatabas3/keyward/internal/rate"
)

// =================================================================================
// RATE LIMIT MIDDLEWARE
// =================================================================================

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// RateMatchFunc decide qué requests pasan por el limiter.
type RateMatchFunc func(r *http.Request) bool

// ClientRegistrationOnly limita solo POST /api/clients (con o sin barra final).
func ClientRegistrationOnly(r *http.Request) bool {
	return r.Method == http.MethodPost && path.Clean("/"+r.URL.Path) == "/api/clients"
}

// RateLimitConfig configura WithRateLimit.
type RateLimitConfig struct {
	Limiter    rate.Limiter
	Match      RateMatchFunc // default: ClientRegistrationOnly
	KeyFunc    RateKeyFunc   // default: ClientAddress
	TrustProxy bool

	now func() time.Time
}

// WithRateLimit aplica el limiter a los requests que cumplen Match.
// Si el limiter falla se deja pasar el request (fail open) y se loguea.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Match == nil {
		cfg.Match = ClientRegistrationOnly
	}
	if cfg.KeyFunc == nil {
		trust := cfg.TrustProxy
		cfg.KeyFunc = func(r *http.Request) string { return ClientAddress(r, trust) }
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Match(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyFunc(r)
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error, allowing request",
					logger.Component("rate"), logger.ClientIP(key), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := cfg.now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

			if !res.Allowed {
				metrics.RateLimitRejections.Inc()
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSeconds(res.RetryAfter), 10))
				logger.From(r.Context()).Info("rate limit exceeded",
					logger.Component("rate"), logger.ClientIP(key))
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds redondea hacia arriba; nunca menos de 1.
func retryAfterSeconds(d time.Duration) int64 {
	s := int64((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
