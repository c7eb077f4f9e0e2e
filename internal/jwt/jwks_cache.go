package jwt

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// JWKSCache guarda el JWKS serializado por un TTL corto.
// Se invalida explícitamente tras cada rotación (KeyManager.OnRotate).
type JWKSCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	load func(ctx context.Context) (json.RawMessage, error)

	data json.RawMessage
	exp  time.Time
}

// NewJWKSCache crea el cache. ttl <= 0 desactiva el cache (siempre carga).
func NewJWKSCache(ttl time.Duration, loader func(ctx context.Context) (json.RawMessage, error)) *JWKSCache {
	return &JWKSCache{ttl: ttl, load: loader}
}

func (c *JWKSCache) Get(ctx context.Context) (json.RawMessage, error) {
	now := time.Now()

	c.mu.RLock()
	if c.data != nil && now.Before(c.exp) {
		data := c.data
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if c.ttl <= 0 {
		return data, nil
	}

	c.mu.Lock()
	c.data = data
	c.exp = now.Add(c.ttl)
	c.mu.Unlock()
	return data, nil
}

// Invalidate descarta el JWKS cacheado.
func (c *JWKSCache) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.exp = time.Time{}
	c.mu.Unlock()
}
