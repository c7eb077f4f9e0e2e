package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate verifica rangos y valores obligatorios. Devuelve todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	// SERVER
	check(strings.TrimSpace(c.Server.Addr) != "", "server.addr is required")
	check(c.Server.HSTSMaxAge >= 300, "server.hsts_max_age must be >= 300 (got %d)", c.Server.HSTSMaxAge)

	// STORAGE
	switch c.Storage.Driver {
	case "postgres", "sqlite", "memory":
		check(c.Storage.Driver == "memory" || c.Storage.DSN != "", "storage.dsn is required for driver %q", c.Storage.Driver)
	case "mongo":
		check(c.Storage.Mongo.URI != "" || c.Storage.DSN != "", "storage.mongo.uri is required for driver mongo")
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be postgres|sqlite|mongo|memory (got %q)", c.Storage.Driver))
	}

	// OAUTH
	check(between(c.OAuth.DefaultKeySize, 1024, 4096), "oauth.default_key_size must be in [1024, 4096] (got %d)", c.OAuth.DefaultKeySize)
	switch c.OAuth.DefaultAlgorithm {
	case "RS256", "RS384", "RS512":
	default:
		errs = append(errs, fmt.Errorf("oauth.default_algorithm must be RS256|RS384|RS512 (got %q)", c.OAuth.DefaultAlgorithm))
	}
	check(strings.TrimSpace(c.OAuth.DefaultScope) != "", "oauth.default_scope is required")
	check(between(c.OAuth.SecretLength, 16, 64), "oauth.secret_length must be in [16, 64] (got %d)", c.OAuth.SecretLength)
	check(between(c.OAuth.DefaultAccessTokenTTL, 60, 86400), "oauth.default_access_token_ttl must be in [60, 86400] (got %d)", c.OAuth.DefaultAccessTokenTTL)
	check(between(c.OAuth.MaxScopes, 1, 20), "oauth.max_scopes must be in [1, 20] (got %d)", c.OAuth.MaxScopes)
	check(between(c.OAuth.JWKSMaxKeys, 1, 20), "oauth.jwks_max_keys must be in [1, 20] (got %d)", c.OAuth.JWKSMaxKeys)

	// RATE
	check(between(c.Rate.Limit, 1, 1000), "rate.limit must be in [1, 1000] (got %d)", c.Rate.Limit)
	check(c.Rate.Window >= time.Minute && c.Rate.Window <= 24*time.Hour, "rate.window must be in [60s, 86400s] (got %s)", c.Rate.Window)
	check(c.Rate.CleanupInterval > 0, "rate.cleanup_interval must be > 0")
	switch c.Rate.Backend {
	case "memory":
	case "redis":
		check(c.Rate.Redis.Addr != "", "rate.redis.addr is required for backend redis")
	default:
		errs = append(errs, fmt.Errorf("rate.backend must be memory|redis (got %q)", c.Rate.Backend))
	}

	// ADMIN
	check(strings.TrimSpace(c.Admin.APIKey) != "", "admin.api_key is required")
	if c.App.Env == "prod" {
		check(len(c.Admin.APIKey) >= 16, "admin.api_key must be at least 16 chars in prod")
	}
	check(strings.TrimSpace(c.Admin.Header) != "", "admin.header is required")

	// BOOTSTRAP
	check(c.Bootstrap.StoreRetryAttempts >= 1, "bootstrap.store_retry_attempts must be >= 1 (got %d)", c.Bootstrap.StoreRetryAttempts)

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func between(v, lo, hi int) bool { return v >= lo && v <= hi }
