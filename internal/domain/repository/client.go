package repository

import (
	"context"
	"time"
)

// Client representa un cliente OAuth registrado (client_credentials).
type Client struct {
	ID             string // UUID interno
	ClientID       string
	ClientName     string
	SecretHash     string // bcrypt
	Scopes         []string
	AccessTokenTTL int64 // segundos
	CreatedAt      time.Time
}

// ClientRepository define operaciones sobre clientes registrados.
type ClientRepository interface {
	// Create inserta un cliente nuevo. ErrConflict si el client_id ya existe.
	Create(ctx context.Context, c *Client) error

	// GetByClientID obtiene un cliente. ErrNotFound si no existe.
	GetByClientID(ctx context.Context, clientID string) (*Client, error)

	// DeleteByClientID elimina un cliente. Idempotente: no falla si no existe.
	DeleteByClientID(ctx context.Context, clientID string) error
}
