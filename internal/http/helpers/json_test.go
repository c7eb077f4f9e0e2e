package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name string `json:"name"`
}

func TestReadJSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
		r.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		var p payload
		assert.True(t, ReadJSON(rr, r, &p))
		assert.Equal(t, "x", p.Name)
	})

	t.Run("wrong content type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "text/plain")
		rr := httptest.NewRecorder()
		assert.False(t, ReadJSON(rr, r, &payload{}))
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})

	t.Run("bad json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")
		rr := httptest.NewRecorder()
		assert.False(t, ReadJSON(rr, r, &payload{}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "INVALID_JSON")
	})

	t.Run("too large", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		r.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		assert.False(t, ReadJSON(rr, r, &payload{}))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})
}
