package middlewares

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxPrincipalKey ctxKey = "principal"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// WithPrincipal inyecta la identidad autenticada en el contexto.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, principal)
}

// GetRequestID obtiene el request ID del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}

// GetPrincipal obtiene la identidad seteada por el admin gate ("" si no hay).
func GetPrincipal(ctx context.Context) string {
	if s, ok := ctx.Value(ctxPrincipalKey).(string); ok {
		return s
	}
	return ""
}

// =================================================================================
// CLIENT ADDRESS
// =================================================================================

// ClientAddress deriva la dirección del cliente.
// Con trustProxy: primer valor de X-Forwarded-For, luego X-Real-IP, luego la conexión.
// Sin trustProxy solo se usa la dirección de la conexión (los headers son falsificables).
func ClientAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
			first, _, _ := strings.Cut(xf, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
			return xr
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
