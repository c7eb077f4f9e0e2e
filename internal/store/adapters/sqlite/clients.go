package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
)

// ─── ClientRepository ───

type clientRepo struct{ db *sql.DB }

func (r *clientRepo) Create(ctx context.Context, c *repository.Client) error {
	scopes, err := json.Marshal(c.Scopes)
	if err != nil {
		return fmt.Errorf("encoding scopes: %w", err)
	}
	const q = `
INSERT INTO oauth_clients (id, client_id, client_name, secret_hash, scopes, access_token_ttl, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q, c.ID, c.ClientID, c.ClientName, c.SecretHash, string(scopes), c.AccessTokenTTL, c.CreatedAt.UnixNano())
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `
SELECT id, client_id, client_name, secret_hash, scopes, access_token_ttl, created_at
FROM oauth_clients WHERE client_id = ?`
	var (
		c       repository.Client
		scopes  string
		created int64
	)
	err := r.db.QueryRowContext(ctx, q, clientID).Scan(
		&c.ID, &c.ClientID, &c.ClientName, &c.SecretHash, &scopes, &c.AccessTokenTTL, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scopes), &c.Scopes); err != nil {
		return nil, fmt.Errorf("decoding scopes: %w", err)
	}
	c.CreatedAt = time.Unix(0, created).UTC()
	return &c, nil
}

func (r *clientRepo) DeleteByClientID(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_clients WHERE client_id = ?`, clientID)
	return err
}
