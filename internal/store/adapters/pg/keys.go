package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
)

// ─── KeyRepository ───

type keyRepo struct{ pool *pgxpool.Pool }

const keyColumns = `kid, algorithm, key_size, public_key_pem, private_key_pem, created_at, is_active`

func scanKey(row pgx.Row) (*repository.SigningKey, error) {
	var k repository.SigningKey
	if err := row.Scan(&k.KID, &k.Algorithm, &k.KeySize, &k.PublicKeyPEM, &k.PrivateKeyPEM, &k.CreatedAt, &k.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	k.CreatedAt = k.CreatedAt.UTC()
	return &k, nil
}

func (r *keyRepo) GetActive(ctx context.Context) (*repository.SigningKey, error) {
	const q = `SELECT ` + keyColumns + ` FROM signing_keys WHERE is_active LIMIT 1`
	return scanKey(r.pool.QueryRow(ctx, q))
}

func (r *keyRepo) GetByKID(ctx context.Context, kid string) (*repository.SigningKey, error) {
	const q = `SELECT ` + keyColumns + ` FROM signing_keys WHERE kid = $1`
	return scanKey(r.pool.QueryRow(ctx, q, kid))
}

func (r *keyRepo) List(ctx context.Context) ([]repository.SigningKey, error) {
	const q = `
SELECT kid, algorithm, key_size, public_key_pem, '' AS private_key_pem, created_at, is_active
FROM signing_keys
ORDER BY created_at DESC, kid DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.SigningKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

func (r *keyRepo) Insert(ctx context.Context, k *repository.SigningKey) error {
	const q = `
INSERT INTO signing_keys (` + keyColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (kid) DO UPDATE SET
    algorithm = EXCLUDED.algorithm,
    key_size = EXCLUDED.key_size,
    public_key_pem = EXCLUDED.public_key_pem,
    private_key_pem = EXCLUDED.private_key_pem,
    is_active = EXCLUDED.is_active`
	_, err := r.pool.Exec(ctx, q, k.KID, k.Algorithm, k.KeySize, k.PublicKeyPEM, k.PrivateKeyPEM, k.CreatedAt, k.Active)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// Rotate: desactiva la activa e inserta la nueva en una tx. La fila activa se
// bloquea con FOR UPDATE; si dos rotaciones compiten, el índice parcial único
// hace fallar a la segunda en vez de dejar dos activas.
func (r *keyRepo) Rotate(ctx context.Context, k *repository.SigningKey) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var prev string
	err = tx.QueryRow(ctx, `SELECT kid FROM signing_keys WHERE is_active FOR UPDATE`).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	// Desactivar primero para no chocar con el índice único.
	if prev != "" {
		if _, err := tx.Exec(ctx, `UPDATE signing_keys SET is_active = false WHERE kid = $1`, prev); err != nil {
			return "", err
		}
	}

	const ins = `INSERT INTO signing_keys (` + keyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, true)`
	if _, err := tx.Exec(ctx, ins, k.KID, k.Algorithm, k.KeySize, k.PublicKeyPEM, k.PrivateKeyPEM, k.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return "", repository.ErrConflict
		}
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	k.Active = true
	return prev, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
