package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("KEYWARD_URL", srv.URL)
	t.Setenv("KEYWARD_ADMIN_KEY", "ctl-admin-key")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeysRotate_SendsAdminKeyAndSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/keys/rotate", r.URL.Path)
		assert.Equal(t, "2048", r.URL.Query().Get("keySize"))
		assert.Equal(t, "ctl-admin-key", r.Header.Get("X-API-KEY"))
		_ = json.NewEncoder(w).Encode(map[string]any{"kid": "k1", "algorithm": "RS256", "keySize": 2048})
	}))
	defer srv.Close()

	out, err := run(t, srv, "keys", "rotate", "--key-size", "2048")
	require.NoError(t, err)
	assert.Equal(t, "rotated kid=k1 alg=RS256 size=2048\n", out)
}

func TestClientsCreate_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Orders", body["clientName"])
		assert.Equal(t, []any{"read", "write"}, body["scopes"])
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"clientId": "abc", "clientSecret": "s3cr3t"})
	}))
	defer srv.Close()

	out, err := run(t, srv, "--out", "json", "clients", "create", "--name", "Orders", "--scope", "read,write")
	require.NoError(t, err)
	assert.Contains(t, out, `"clientSecret": "s3cr3t"`)
}

func TestErrorsAreReadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","message":"Authentication required","detail":"invalid api key"}`))
	}))
	defer srv.Close()

	_, err := run(t, srv, "keys", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAUTHORIZED (status=401)")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClientsDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/clients/svc-a/admin", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out, err := run(t, srv, "clients", "delete", "svc-a")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}
