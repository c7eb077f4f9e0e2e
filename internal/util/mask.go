// Package util contiene helpers chicos sin dependencias de dominio.
package util

import (
	"net/url"
	"strings"
)

// MaskDSN oculta la password de un DSN tipo URL (postgres://, mongodb://).
// DSN sin esquema (file:..., key=value) se devuelven sin la parte password=.
func MaskDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return ""
	}
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		return u.String()
	}
	parts := strings.Fields(dsn)
	for i, p := range parts {
		if k, _, ok := strings.Cut(p, "="); ok && strings.EqualFold(k, "password") {
			parts[i] = k + "=xxxxx"
		}
	}
	return strings.Join(parts, " ")
}
