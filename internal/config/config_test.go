package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeYAML(t, "admin:\n  api_key: test-admin-key\n")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.False(t, c.Server.TrustProxyHeaders)
	assert.Equal(t, "sqlite", c.Storage.Driver)
	assert.Equal(t, 2048, c.OAuth.DefaultKeySize)
	assert.Equal(t, "RS256", c.OAuth.DefaultAlgorithm)
	assert.Equal(t, 5, c.Rate.Limit)
	assert.Equal(t, time.Hour, c.Rate.Window)
	assert.Equal(t, "X-API-KEY", c.Admin.Header)
	assert.True(t, *c.Bootstrap.FailFast)
	assert.Equal(t, 5, c.Bootstrap.StoreRetryAttempts)
	assert.Equal(t, 3, c.OAuth.JWKSMaxKeys)
}

func TestLoad_YAMLValues(t *testing.T) {
	p := writeYAML(t, `
server:
  addr: ":9090"
  trust_proxy_headers: true
rate:
  limit: 20
  window: 10m
bootstrap:
  fail_fast: false
admin:
  api_key: test-admin-key
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.True(t, c.Server.TrustProxyHeaders)
	assert.Equal(t, 20, c.Rate.Limit)
	assert.Equal(t, 10*time.Minute, c.Rate.Window)
	assert.False(t, *c.Bootstrap.FailFast)
}

func TestEnvOverridesYAML(t *testing.T) {
	p := writeYAML(t, "rate:\n  limit: 20\nadmin:\n  api_key: from-yaml-key\n")
	t.Setenv("RATE_LIMIT", "7")
	t.Setenv("RATE_WINDOW", "120")
	t.Setenv("ADMIN_API_KEY", "from-env-key")
	t.Setenv("SERVER_TRUST_PROXY_HEADERS", "true")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Rate.Limit)
	assert.Equal(t, 2*time.Minute, c.Rate.Window)
	assert.Equal(t, "from-env-key", c.Admin.APIKey)
	assert.True(t, c.Server.TrustProxyHeaders)
}

func TestValidate_Bounds(t *testing.T) {
	cases := map[string]string{
		"key size low":   "oauth:\n  default_key_size: 512\n",
		"key size high":  "oauth:\n  default_key_size: 8192\n",
		"rate limit":     "rate:\n  limit: 1001\n",
		"window short":   "rate:\n  window: 30s\n",
		"window long":    "rate:\n  window: 48h\n",
		"secret length":  "oauth:\n  secret_length: 8\n",
		"max scopes":     "oauth:\n  max_scopes: 21\n",
		"bad algorithm":  "oauth:\n  default_algorithm: HS256\n",
		"bad driver":     "storage:\n  driver: mysql\n",
		"bad backend":    "rate:\n  backend: etcd\n",
		"redis no addr":  "rate:\n  backend: redis\n",
		"hsts too short": "server:\n  hsts_max_age: 60\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body+"admin:\n  api_key: test-admin-key\n"))
			assert.Error(t, err)
		})
	}
}

func TestValidate_MissingAdminKey(t *testing.T) {
	_, err := Load(writeYAML(t, "server:\n  addr: \":8080\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin.api_key")
}

func TestValidate_ProdRequiresLongAdminKey(t *testing.T) {
	_, err := Load(writeYAML(t, "app:\n  app_env: prod\nadmin:\n  api_key: short\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "16 chars")
}

func TestLoadOptional_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "env-only-admin-key")
	c, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-only-admin-key", c.Admin.APIKey)
}
