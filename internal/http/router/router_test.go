package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	clientsctrl "github.com/dropDatabas3/keyward/internal/http/controllers/clients"
	healthctrl "github.com/dropDatabas3/keyward/internal/http/controllers/health"
	jwksctrl "github.com/dropDatabas3/keyward/internal/http/controllers/jwks"
	keysctrl "github.com/dropDatabas3/keyward/internal/http/controllers/keys"
	mw "github.com/dropDatabas3/keyward/internal/http/middlewares"
	clientssvc "github.com/dropDatabas3/keyward/internal/http/services/clients"
	healthsvc "github.com/dropDatabas3/keyward/internal/http/services/health"
	keyssvc "github.com/dropDatabas3/keyward/internal/http/services/keys"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/rate"
	"github.com/dropDatabas3/keyward/internal/security/password"
	"github.com/dropDatabas3/keyward/internal/store/adapters/memory"
)

const adminKey = "test-admin-key-0123"

type testEnv struct {
	srv *httptest.Server
	km  *jwtx.KeyManager
}

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = bcrypt.DefaultCost })

	conn := memory.New()
	km := jwtx.NewKeyManager(conn.Keys(), jwtx.KeyManagerOptions{DefaultKeySize: 1024})
	issuer := jwtx.NewIssuer("https://keyward.test", km)
	cache := jwtx.NewJWKSCache(time.Minute, func(ctx context.Context) (json.RawMessage, error) {
		return km.JWKSJSON(ctx, 3)
	})
	km.OnRotate(func(string) { cache.Invalidate() })

	h := New(Deps{
		Controllers: Controllers{
			Keys: keysctrl.NewKeysController(keyssvc.NewKeyService(km)),
			Clients: clientsctrl.NewClientsController(clientssvc.NewClientService(conn.Clients(), clientssvc.Policy{
				DefaultScope:          "read",
				SecretLength:          32,
				DefaultAccessTokenTTL: 3600,
				MaxScopes:             3,
			})),
			JWKS: jwksctrl.NewJWKSController(cache),
			Health: healthctrl.NewHealthController(healthsvc.NewHealthService(healthsvc.Deps{
				StoreCheck: conn.Ping,
				Issuer:     issuer,
			})),
		},
		RateLimiter:     rate.NewWindowLimiter(rateLimit, time.Hour, time.Minute),
		Admin:           mw.AdminConfig{APIKey: adminKey},
		SecurityHeaders: true,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, km: km}
}

func (e *testEnv) do(t *testing.T, method, path, body string, admin bool) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("X-API-KEY", adminKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestKeysEndpoints(t *testing.T) {
	env := newTestEnv(t, 5)

	resp, body := env.do(t, http.MethodGet, "/api/keys/active", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "NO_ACTIVE_KEY", body["code"])

	resp, body = env.do(t, http.MethodPost, "/api/keys/rotate", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing api key", body["detail"])

	resp, _ = env.do(t, http.MethodPost, "/api/keys/rotate?keySize=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/keys/rotate?keySize=512", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PARAMETER", body["code"])

	resp, body = env.do(t, http.MethodPost, "/api/keys/rotate", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	kid, _ := body["kid"].(string)
	assert.NotEmpty(t, kid)
	assert.Equal(t, "RS256", body["algorithm"])
	assert.EqualValues(t, 1024, body["keySize"])
	assert.NotEmpty(t, body["createdAt"])

	resp, body = env.do(t, http.MethodGet, "/api/keys/active", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, kid, body["kid"])
}

func TestKeysRotate_OutOfRangeSizeRejected(t *testing.T) {
	env := newTestEnv(t, 5)

	for _, size := range []string{"0", "-1", "1023", "4097"} {
		resp, body := env.do(t, http.MethodPost, "/api/keys/rotate?keySize="+size, "", true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, size)
		assert.Equal(t, "INVALID_PARAMETER", body["code"], size)
	}

	keys, err := env.km.ListKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys, "no key may be stored for a rejected size")
}

func TestKeysList_AdminOnlyAndNoPrivateMaterial(t *testing.T) {
	env := newTestEnv(t, 5)
	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/keys/rotate", "", true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	for _, p := range []string{"/api/keys", "/api/keys/"} {
		resp, _ := env.do(t, http.MethodGet, p, "", false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, p)
	}

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/keys", nil)
	req.Header.Set("X-API-KEY", adminKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var keys []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&keys))
	require.Len(t, keys, 2)
	active := 0
	for _, k := range keys {
		assert.Contains(t, k["publicKeyPem"], "BEGIN PUBLIC KEY")
		assert.NotContains(t, k, "privateKeyPem")
		if k["isActive"] == true {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestClientsLifecycle(t *testing.T) {
	env := newTestEnv(t, 5)

	resp, body := env.do(t, http.MethodPost, "/api/clients", `{"clientId":"svc-orders","clientName":"Orders","scopes":["read","write","read"]}`, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "svc-orders", body["clientId"])
	assert.Len(t, body["clientSecret"], 43)
	assert.Equal(t, []any{"read", "write"}, body["scopes"])
	assert.EqualValues(t, 3600, body["accessTokenTimeToLiveSeconds"])

	resp, body = env.do(t, http.MethodPost, "/api/clients", `{"clientId":"svc-orders","clientName":"Orders"}`, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/clients/svc-orders", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Orders", body["clientName"])
	assert.NotContains(t, body, "clientSecret")
	assert.NotEmpty(t, body["clientIdIssuedAt"])

	resp, _ = env.do(t, http.MethodDelete, "/api/clients/svc-orders/admin", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/clients/svc-orders/admin", "", true)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/clients/svc-orders", "", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "CLIENT_NOT_FOUND", body["code"])
}

func TestClientsCreate_Defaults(t *testing.T) {
	env := newTestEnv(t, 5)

	resp, body := env.do(t, http.MethodPost, "/api/clients", `{"clientName":"Billing","clientSecret":"my-own-secret","accessTokenTimeToLiveSeconds":120}`, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, body["clientId"], 36)
	assert.Equal(t, "my-own-secret", body["clientSecret"])
	assert.Equal(t, []any{"read"}, body["scopes"])
	assert.EqualValues(t, 120, body["accessTokenTimeToLiveSeconds"])
}

func TestClientsCreate_Validation(t *testing.T) {
	env := newTestEnv(t, 50)

	cases := map[string]struct {
		body  string
		field string
	}{
		"missing name":   {`{"clientId":"abc"}`, "clientName"},
		"short id":       {`{"clientId":"ab","clientName":"Xy"}`, "clientId"},
		"bad id chars":   {`{"clientId":"a b c","clientName":"Xy"}`, "clientId"},
		"short secret":   {`{"clientName":"Xy","clientSecret":"short"}`, "clientSecret"},
		"ttl too small":  {`{"clientName":"Xy","accessTokenTimeToLiveSeconds":59}`, "accessTokenTimeToLiveSeconds"},
		"ttl too large":  {`{"clientName":"Xy","accessTokenTimeToLiveSeconds":86401}`, "accessTokenTimeToLiveSeconds"},
		"bad scope":      {`{"clientName":"Xy","scopes":["ok","bad scope"]}`, "scopes"},
		"too many scope": {`{"clientName":"Xy","scopes":["a","b","c","d"]}`, "scopes"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/clients", tc.body, false)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_FAILED", body["code"])
			fields, _ := body["validationErrors"].(map[string]any)
			assert.Contains(t, fields, tc.field)
		})
	}

	resp, body := env.do(t, http.MethodPost, "/api/clients", `{"clientName":`, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_JSON", body["code"])
}

func TestClientsCreate_RateLimited(t *testing.T) {
	env := newTestEnv(t, 2)

	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/clients", `{"clientName":"Client"}`, false)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, body := env.do(t, http.MethodPost, "/api/clients", `{"clientName":"Client"}`, false)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// La barra final no evade el límite.
	resp, _ = env.do(t, http.MethodPost, "/api/clients/", `{"clientName":"Client"}`, false)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Las lecturas no consumen cupo.
	resp, _ = env.do(t, http.MethodGet, "/api/clients/unknown-client", "", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJWKS(t *testing.T) {
	env := newTestEnv(t, 5)
	for i := 0; i < 4; i++ {
		_, err := env.km.GenerateAndActivate(context.Background(), env.km.DefaultKeySize())
		require.NoError(t, err)
	}

	resp, err := http.Get(env.srv.URL + "/oauth2/jwks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var set jose.JSONWebKeySet
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&set))
	assert.Len(t, set.Keys, 3)

	active, err := env.km.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, active.KID, set.Keys[0].KeyID)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 5)

	resp, _ := env.do(t, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/readyz", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", body["status"])

	_, err := env.km.GenerateAndActivate(context.Background(), env.km.DefaultKeySize())
	require.NoError(t, err)

	resp, body = env.do(t, http.MethodGet, "/readyz", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-JWKS-KID"))
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t, 5)

	resp, body := env.do(t, http.MethodGet, "/nope", "", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ROUTE_NOT_FOUND", body["code"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	// Paths administrativos sin ruta igual pasan por el gate.
	resp, _ = env.do(t, http.MethodGet, "/api/admin/anything", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
