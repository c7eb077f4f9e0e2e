package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
)

// ─── ClientRepository ───

type clientRepo struct{ pool *pgxpool.Pool }

func (r *clientRepo) Create(ctx context.Context, c *repository.Client) error {
	const q = `
INSERT INTO oauth_clients (id, client_id, client_name, secret_hash, scopes, access_token_ttl, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, q, c.ID, c.ClientID, c.ClientName, c.SecretHash, c.Scopes, c.AccessTokenTTL, c.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `
SELECT id, client_id, client_name, secret_hash, scopes, access_token_ttl, created_at
FROM oauth_clients WHERE client_id = $1`
	var c repository.Client
	err := r.pool.QueryRow(ctx, q, clientID).Scan(
		&c.ID, &c.ClientID, &c.ClientName, &c.SecretHash, &c.Scopes, &c.AccessTokenTTL, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func (r *clientRepo) DeleteByClientID(ctx context.Context, clientID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM oauth_clients WHERE client_id = $1`, clientID)
	return err
}
