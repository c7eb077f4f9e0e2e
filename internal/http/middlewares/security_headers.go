package middlewares

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig configura WithSecurityHeaders.
type SecurityHeadersConfig struct {
	HSTSMaxAge int  // segundos; default 15552000 (180 días)
	TrustProxy bool // aceptar X-Forwarded-Proto para detectar HTTPS
}

// isHTTPS detecta si el request llegó por HTTPS (directo o detrás de proxy confiable).
func isHTTPS(r *http.Request, trustProxy bool) bool {
	if r.TLS != nil {
		return true
	}
	return trustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// WithSecurityHeaders inyecta cabeceras de seguridad para una API JSON.
func WithSecurityHeaders(cfg SecurityHeadersConfig) Middleware {
	maxAge := cfg.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 15552000
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.Set("Cross-Origin-Resource-Policy", "same-site")
			h.Set("X-Frame-Options", "DENY")

			// CSP estricta: no servimos HTML
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'self'")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")

			if isHTTPS(r, cfg.TrustProxy) {
				h.Set("Strict-Transport-Security", hsts)
			}

			next.ServeHTTP(w, r)
		})
	}
}
