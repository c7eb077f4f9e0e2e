package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		MetricsAddr        string        `yaml:"metrics_addr"` // vacío = /metrics en el listener principal
		TrustProxyHeaders  bool          `yaml:"trust_proxy_headers"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		EnableCORS         *bool         `yaml:"enable_cors"`
		SecurityHeaders    *bool         `yaml:"security_headers"`
		HSTSMaxAge         int           `yaml:"hsts_max_age"` // segundos
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | sqlite | mongo | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
		Mongo struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
		AutoMigrate *bool `yaml:"auto_migrate"`
	} `yaml:"storage"`

	OAuth struct {
		Issuer                string        `yaml:"issuer"`
		DefaultKeySize        int           `yaml:"default_key_size"`
		DefaultAlgorithm      string        `yaml:"default_algorithm"`
		DefaultScope          string        `yaml:"default_scope"`
		SecretLength          int           `yaml:"secret_length"`
		DefaultAccessTokenTTL int           `yaml:"default_access_token_ttl"` // segundos
		MaxScopes             int           `yaml:"max_scopes"`
		JWKSMaxKeys           int           `yaml:"jwks_max_keys"`
		JWKSCacheTTL          time.Duration `yaml:"jwks_cache_ttl"`
	} `yaml:"oauth"`

	Rate struct {
		Enabled         *bool         `yaml:"enabled"`
		Backend         string        `yaml:"backend"` // memory | redis
		Limit           int           `yaml:"limit"`
		Window          time.Duration `yaml:"window"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
		Redis           struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"rate"`

	Admin struct {
		APIKey string `yaml:"api_key"`
		Header string `yaml:"header"`
	} `yaml:"admin"`

	Bootstrap struct {
		FailFast           *bool `yaml:"fail_fast"`
		StoreRetryAttempts int   `yaml:"store_retry_attempts"`
	} `yaml:"bootstrap"`

	Log struct {
		Env          string        `yaml:"env"` // dev | prod
		Level        string        `yaml:"level"`
		File         string        `yaml:"file"`
		RotationTime time.Duration `yaml:"rotation_time"`
		MaxAge       time.Duration `yaml:"max_age"`
		MaxSizeMB    int64         `yaml:"max_size_mb"`
	} `yaml:"log"`
}

// Load lee config.yaml, aplica defaults, overrides de entorno y valida.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return finish(&c)
}

// LoadFromEnv arma la config solo con defaults + variables de entorno.
func LoadFromEnv() (*Config, error) {
	return finish(&Config{})
}

// LoadOptional usa Load si el archivo existe y LoadFromEnv si no.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return LoadFromEnv()
}

func finish(c *Config) (*Config, error) {
	c.applyEnvOverrides()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}

	// SERVER
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.EnableCORS == nil {
		c.Server.EnableCORS = ptr(true)
	}
	if c.Server.CORSAllowedOrigins == nil {
		c.Server.CORSAllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8080",
			"http://localhost:9000",
		}
	}
	if c.Server.SecurityHeaders == nil {
		c.Server.SecurityHeaders = ptr(true)
	}
	if c.Server.HSTSMaxAge == 0 {
		c.Server.HSTSMaxAge = 31536000
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	// STORAGE
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.DSN == "" {
		c.Storage.DSN = "file:data/keyward.db"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Storage.Postgres.MaxIdleConns == 0 {
		c.Storage.Postgres.MaxIdleConns = 2
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "keyward"
	}
	if c.Storage.AutoMigrate == nil {
		c.Storage.AutoMigrate = ptr(true)
	}

	// OAUTH
	if c.OAuth.DefaultKeySize == 0 {
		c.OAuth.DefaultKeySize = 2048
	}
	if c.OAuth.DefaultAlgorithm == "" {
		c.OAuth.DefaultAlgorithm = "RS256"
	}
	if c.OAuth.DefaultScope == "" {
		c.OAuth.DefaultScope = "read"
	}
	if c.OAuth.SecretLength == 0 {
		c.OAuth.SecretLength = 32
	}
	if c.OAuth.DefaultAccessTokenTTL == 0 {
		c.OAuth.DefaultAccessTokenTTL = 3600
	}
	if c.OAuth.MaxScopes == 0 {
		c.OAuth.MaxScopes = 10
	}
	if c.OAuth.JWKSMaxKeys == 0 {
		c.OAuth.JWKSMaxKeys = 3
	}
	if c.OAuth.JWKSCacheTTL == 0 {
		c.OAuth.JWKSCacheTTL = 15 * time.Second
	}

	// RATE
	if c.Rate.Enabled == nil {
		c.Rate.Enabled = ptr(true)
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 5
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Hour
	}
	if c.Rate.CleanupInterval == 0 {
		c.Rate.CleanupInterval = time.Minute
	}
	if c.Rate.Redis.Prefix == "" {
		c.Rate.Redis.Prefix = "keyward:rl:"
	}

	// ADMIN
	if c.Admin.Header == "" {
		c.Admin.Header = "X-API-KEY"
	}

	// BOOTSTRAP
	if c.Bootstrap.FailFast == nil {
		c.Bootstrap.FailFast = ptr(true)
	}
	if c.Bootstrap.StoreRetryAttempts == 0 {
		c.Bootstrap.StoreRetryAttempts = 5
	}

	// LOG
	if c.Log.Env == "" {
		if c.App.Env == "prod" {
			c.Log.Env = "prod"
		} else {
			c.Log.Env = "dev"
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		s = strings.TrimSpace(s)
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
		// Compat: segundos planos (RATE_WINDOW=3600)
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("METRICS_ADDR"); ok {
		c.Server.MetricsAddr = v
	}
	if v, ok := getEnvBool("SERVER_TRUST_PROXY_HEADERS"); ok {
		c.Server.TrustProxyHeaders = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvBool("SERVER_ENABLE_CORS"); ok {
		c.Server.EnableCORS = ptr(v)
	}
	if v, ok := getEnvBool("SERVER_SECURITY_HEADERS"); ok {
		c.Server.SecurityHeaders = ptr(v)
	}
	if v, ok := getEnvInt("SERVER_HSTS_MAX_AGE"); ok {
		c.Server.HSTSMaxAge = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("MONGO_URI"); ok {
		c.Storage.Mongo.URI = v
	}
	if v, ok := getEnvStr("MONGO_DATABASE"); ok {
		c.Storage.Mongo.Database = v
	}
	if v, ok := getEnvBool("STORAGE_AUTO_MIGRATE"); ok {
		c.Storage.AutoMigrate = ptr(v)
	}

	// OAUTH
	if v, ok := getEnvStr("OAUTH_ISSUER"); ok {
		c.OAuth.Issuer = v
	}
	if v, ok := getEnvInt("OAUTH_DEFAULT_KEY_SIZE"); ok {
		c.OAuth.DefaultKeySize = v
	}
	if v, ok := getEnvStr("OAUTH_DEFAULT_ALGORITHM"); ok {
		c.OAuth.DefaultAlgorithm = strings.ToUpper(v)
	}
	if v, ok := getEnvStr("OAUTH_DEFAULT_SCOPE"); ok {
		c.OAuth.DefaultScope = v
	}
	if v, ok := getEnvInt("OAUTH_SECRET_LENGTH"); ok {
		c.OAuth.SecretLength = v
	}
	if v, ok := getEnvInt("OAUTH_DEFAULT_ACCESS_TOKEN_TTL"); ok {
		c.OAuth.DefaultAccessTokenTTL = v
	}
	if v, ok := getEnvInt("OAUTH_MAX_SCOPES"); ok {
		c.OAuth.MaxScopes = v
	}
	if v, ok := getEnvInt("OAUTH_JWKS_MAX_KEYS"); ok {
		c.OAuth.JWKSMaxKeys = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = ptr(v)
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvDur("RATE_CLEANUP_INTERVAL"); ok {
		c.Rate.CleanupInterval = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Rate.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Rate.Redis.Prefix = v
	}

	// ADMIN
	if v, ok := getEnvStr("ADMIN_API_KEY"); ok {
		c.Admin.APIKey = v
	}
	if v, ok := getEnvStr("ADMIN_HEADER"); ok {
		c.Admin.Header = v
	}

	// BOOTSTRAP
	if v, ok := getEnvBool("BOOTSTRAP_FAIL_FAST"); ok {
		c.Bootstrap.FailFast = ptr(v)
	}
	if v, ok := getEnvInt("BOOTSTRAP_STORE_RETRY_ATTEMPTS"); ok {
		c.Bootstrap.StoreRetryAttempts = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_ENV"); ok {
		c.Log.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("LOG_FILE"); ok {
		c.Log.File = v
	}
}

func ptr[T any](v T) *T { return &v }
