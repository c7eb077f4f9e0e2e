package middlewares

import (
	"crypto/subtle"
	"net/http"
	"path"
	"strings"

	httperrors "github.com/dropDatabas3/keyward/internal/http/errors"
	"github.com/dropDatabas3/keyward/internal/metrics"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

// =================================================================================
// ADMIN GATE
// =================================================================================

const (
	DefaultAdminHeader = "X-API-KEY"

	// AdminPrincipal es la identidad sintetizada para requests con api key válida.
	AdminPrincipal = "api-key-admin"
)

// AdminPathMatcher reporta si p es administrativo:
// exacto /api/keys/rotate, exacto /api/keys, cualquier path que termine en /admin
// o que esté bajo /api/admin/. El path se limpia antes (barra final, "//", ".").
func AdminPathMatcher(p string) bool {
	clean := path.Clean("/" + p)
	switch {
	case clean == "/api/keys/rotate", clean == "/api/keys":
		return true
	case strings.HasSuffix(clean, "/admin"):
		return true
	case strings.HasPrefix(clean, "/api/admin/"):
		return true
	}
	return false
}

// AdminConfig configura RequireAdminKey.
type AdminConfig struct {
	APIKey string
	Header string                 // default X-API-KEY
	Match  func(path string) bool // default AdminPathMatcher
}

// RequireAdminKey exige el header de api key en los paths administrativos.
// La comparación es en tiempo constante. Los paths que no matchean pasan sin tocar.
func RequireAdminKey(cfg AdminConfig) Middleware {
	header := cfg.Header
	if header == "" {
		header = DefaultAdminHeader
	}
	match := cfg.Match
	if match == nil {
		match = AdminPathMatcher
	}
	expected := []byte(cfg.APIKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			log := logger.From(r.Context()).With(logger.Component("admin_gate"))

			provided := r.Header.Get(header)
			if strings.TrimSpace(provided) == "" {
				metrics.AdminGateDenials.WithLabelValues("missing").Inc()
				log.Warn("admin api key missing")
				httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("missing api key"))
				return
			}
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				metrics.AdminGateDenials.WithLabelValues("invalid").Inc()
				log.Warn("admin api key invalid")
				httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("invalid api key"))
				return
			}

			ctx := WithPrincipal(r.Context(), AdminPrincipal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
