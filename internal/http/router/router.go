// Package router arma el chi.Router con el pipeline de admisión y las rutas.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	clientsctrl "github.com/dropDatabas3/keyward/internal/http/controllers/clients"
	healthctrl "github.com/dropDatabas3/keyward/internal/http/controllers/health"
	jwksctrl "github.com/dropDatabas3/keyward/internal/http/controllers/jwks"
	keysctrl "github.com/dropDatabas3/keyward/internal/http/controllers/keys"
	httperrors "github.com/dropDatabas3/keyward/internal/http/errors"
	mw "github.com/dropDatabas3/keyward/internal/http/middlewares"
	"github.com/dropDatabas3/keyward/internal/rate"
)

// Controllers agrupa los controllers que registra el router.
type Controllers struct {
	Keys    *keysctrl.KeysController
	Clients *clientsctrl.ClientsController
	JWKS    *jwksctrl.JWKSController
	Health  *healthctrl.HealthController
}

// Deps contiene todo lo que necesita el router.
type Deps struct {
	Controllers Controllers

	// Admisión
	RateLimiter rate.Limiter // nil = sin rate limit
	Admin       mw.AdminConfig
	TrustProxy  bool

	// Cabeceras
	CORSOrigins     []string // vacío = CORS deshabilitado
	SecurityHeaders bool
	HSTSMaxAge      int

	// Metrics, si no es nil, se monta en /metrics.
	Metrics http.Handler
}

// New construye el handler HTTP.
//
// Pipeline (externo → interno): recover → request id → logging → metrics →
// security headers → CORS → rate limit (POST /api/clients) → admin gate → ruta.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(d.TrustProxy),
		mw.WithMetrics(),
	)
	if d.SecurityHeaders {
		r.Use(mw.WithSecurityHeaders(mw.SecurityHeadersConfig{HSTSMaxAge: d.HSTSMaxAge, TrustProxy: d.TrustProxy}))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(mw.WithCORS(d.CORSOrigins, d.Admin.Header))
	}
	r.Use(
		mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.RateLimiter, TrustProxy: d.TrustProxy}),
		mw.RequireAdminKey(d.Admin),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerHealthRoutes(r, d.Controllers.Health)
	registerKeyRoutes(r, d.Controllers.Keys)
	registerClientRoutes(r, d.Controllers.Clients)
	registerJWKSRoutes(r, d.Controllers.JWKS)

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	return r
}

func registerHealthRoutes(r chi.Router, c *healthctrl.HealthController) {
	if c == nil {
		return
	}
	r.Get("/healthz", c.Healthz)
	r.Get("/readyz", c.Readyz)
}

// /api/keys/rotate y /api/keys quedan detrás del admin gate por path.
func registerKeyRoutes(r chi.Router, c *keysctrl.KeysController) {
	if c == nil {
		return
	}
	r.Route("/api/keys", func(r chi.Router) {
		r.Get("/", c.List)
		r.Post("/rotate", c.Rotate)
		r.Get("/active", c.Active)
	})
}

func registerClientRoutes(r chi.Router, c *clientsctrl.ClientsController) {
	if c == nil {
		return
	}
	r.Route("/api/clients", func(r chi.Router) {
		r.With(mw.WithNoStore()).Post("/", c.Create)
		r.Get("/{clientId}", c.Get)
		r.Delete("/{clientId}/admin", c.Delete)
	})
}

func registerJWKSRoutes(r chi.Router, c *jwksctrl.JWKSController) {
	if c == nil {
		return
	}
	r.With(mw.WithNoStore()).Get("/oauth2/jwks", c.GetJWKS)
}
