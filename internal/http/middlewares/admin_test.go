package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminPathMatcher(t *testing.T) {
	admin := []string{"/api/keys/rotate", "/api/keys", "/api/keys/", "//api/keys/rotate/", "/api/clients/abc/admin/", "/api/clients/abc/admin", "/admin", "/api/admin/x", "/api/admin/x/y", "/api/admin"}
	for _, p := range admin {
		assert.True(t, AdminPathMatcher(p), p)
	}
	public := []string{"/api/keys/active", "/api/keys/rotate/x", "/api/keysx", "/api/clients", "/api/clients/abc", "/api/administrator", "/oauth2/jwks", "/healthz"}
	for _, p := range public {
		assert.False(t, AdminPathMatcher(p), p)
	}
}

func TestRequireAdminKey(t *testing.T) {
	var principal string
	var called bool
	h := RequireAdminKey(AdminConfig{APIKey: "correct-admin-key"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		principal = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name      string
		path      string
		key       string
		status    int
		called    bool
		principal string
		detail    string
	}{
		{"missing header", "/api/keys/rotate", "", http.StatusUnauthorized, false, "", "missing api key"},
		{"blank header", "/api/keys/rotate", "   ", http.StatusUnauthorized, false, "", "missing api key"},
		{"wrong key", "/api/keys/rotate", "wrong", http.StatusUnauthorized, false, "", "invalid api key"},
		{"prefix of key", "/api/keys", "correct-admin", http.StatusUnauthorized, false, "", "invalid api key"},
		{"correct key", "/api/keys/rotate", "correct-admin-key", http.StatusOK, true, AdminPrincipal, ""},
		{"suffix admin path", "/api/clients/c1/admin", "correct-admin-key", http.StatusOK, true, AdminPrincipal, ""},
		{"public path without key", "/api/keys/active", "", http.StatusOK, true, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called, principal = false, ""
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			if tc.key != "" {
				req.Header.Set("X-API-KEY", tc.key)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.called, called)
			assert.Equal(t, tc.principal, principal)
			if tc.detail != "" {
				assert.Contains(t, rr.Body.String(), tc.detail)
				assert.Contains(t, rr.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestRequireAdminKey_CustomHeader(t *testing.T) {
	h := RequireAdminKey(AdminConfig{APIKey: "k-123456", Header: "X-Admin-Token"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/keys", nil)
	req.Header.Set("X-API-KEY", "k-123456")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req.Header.Set("X-Admin-Token", "k-123456")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequireAdminKey_EmptyConfiguredKeyDeniesAll(t *testing.T) {
	h := RequireAdminKey(AdminConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/keys/rotate", nil)
	req.Header.Set("X-API-KEY", "anything")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
