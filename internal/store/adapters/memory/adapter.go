// Package memory implementa un adapter en memoria (tests y modo efímero).
// Las claves se pierden al reiniciar.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	store "github.com/dropDatabas3/keyward/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return New(), nil
}

// Connection guarda claves y clientes bajo un único mutex.
type Connection struct {
	mu      sync.RWMutex
	keys    []repository.SigningKey // orden de inserción
	clients map[string]repository.Client
}

// New crea una conexión vacía. Útil directamente en tests.
func New() *Connection {
	return &Connection{clients: make(map[string]repository.Client)}
}

func (c *Connection) Name() string                   { return "memory" }
func (c *Connection) Ping(ctx context.Context) error { return nil }
func (c *Connection) Close() error                   { return nil }

func (c *Connection) Keys() repository.KeyRepository       { return (*keyRepo)(c) }
func (c *Connection) Clients() repository.ClientRepository { return (*clientRepo)(c) }

// ─── KeyRepository ───

type keyRepo Connection

func (r *keyRepo) GetActive(ctx context.Context) (*repository.SigningKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.keys {
		if r.keys[i].Active {
			cp := r.keys[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *keyRepo) GetByKID(ctx context.Context, kid string) (*repository.SigningKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(kid); i >= 0 {
		cp := r.keys[i]
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *keyRepo) List(ctx context.Context) ([]repository.SigningKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.SigningKey, 0, len(r.keys))
	for i := len(r.keys) - 1; i >= 0; i-- {
		out = append(out, r.keys[i].WithoutPrivate())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *keyRepo) Insert(ctx context.Context, k *repository.SigningKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k.Active {
		for i := range r.keys {
			if r.keys[i].Active && r.keys[i].KID != k.KID {
				return repository.ErrConflict
			}
		}
	}
	if i := r.indexOf(k.KID); i >= 0 {
		r.keys[i] = *k
		return nil
	}
	r.keys = append(r.keys, *k)
	return nil
}

func (r *keyRepo) Rotate(ctx context.Context, k *repository.SigningKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(k.KID) >= 0 {
		return "", repository.ErrConflict
	}
	var prev string
	for i := range r.keys {
		if r.keys[i].Active {
			r.keys[i].Active = false
			prev = r.keys[i].KID
		}
	}
	k.Active = true
	r.keys = append(r.keys, *k)
	return prev, nil
}

func (r *keyRepo) indexOf(kid string) int {
	for i := range r.keys {
		if r.keys[i].KID == kid {
			return i
		}
	}
	return -1
}

// ─── ClientRepository ───

type clientRepo Connection

func (r *clientRepo) Create(ctx context.Context, cl *repository.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[cl.ClientID]; ok {
		return repository.ErrConflict
	}
	cp := *cl
	cp.Scopes = append([]string(nil), cl.Scopes...)
	r.clients[cl.ClientID] = cp
	return nil
}

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cl, ok := r.clients[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cl.Scopes = append([]string(nil), cl.Scopes...)
	return &cl, nil
}

func (r *clientRepo) DeleteByClientID(ctx context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, clientID)
	return nil
}
