package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
)

// ─── KeyRepository ───

type keyRepo struct{ db *sql.DB }

const keyColumns = `kid, algorithm, key_size, public_key_pem, private_key_pem, created_at, is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner) (*repository.SigningKey, error) {
	var (
		k       repository.SigningKey
		created int64
		active  int
	)
	if err := row.Scan(&k.KID, &k.Algorithm, &k.KeySize, &k.PublicKeyPEM, &k.PrivateKeyPEM, &created, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	k.CreatedAt = time.Unix(0, created).UTC()
	k.Active = active == 1
	return &k, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *keyRepo) GetActive(ctx context.Context) (*repository.SigningKey, error) {
	const q = `SELECT ` + keyColumns + ` FROM signing_keys WHERE is_active = 1 LIMIT 1`
	return scanKey(r.db.QueryRowContext(ctx, q))
}

func (r *keyRepo) GetByKID(ctx context.Context, kid string) (*repository.SigningKey, error) {
	const q = `SELECT ` + keyColumns + ` FROM signing_keys WHERE kid = ?`
	return scanKey(r.db.QueryRowContext(ctx, q, kid))
}

func (r *keyRepo) List(ctx context.Context) ([]repository.SigningKey, error) {
	const q = `
SELECT kid, algorithm, key_size, public_key_pem, '' AS private_key_pem, created_at, is_active
FROM signing_keys
ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, q)
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
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (kid) DO UPDATE SET
    algorithm = excluded.algorithm,
    key_size = excluded.key_size,
    public_key_pem = excluded.public_key_pem,
    private_key_pem = excluded.private_key_pem,
    is_active = excluded.is_active`
	_, err := r.db.ExecContext(ctx, q, k.KID, k.Algorithm, k.KeySize, k.PublicKeyPEM, k.PrivateKeyPEM, k.CreatedAt.UnixNano(), boolInt(k.Active))
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// Rotate desactiva la activa e inserta la nueva en una sola tx.
func (r *keyRepo) Rotate(ctx context.Context, k *repository.SigningKey) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer rollback(tx)

	var prev string
	err = tx.QueryRowContext(ctx, `SELECT kid FROM signing_keys WHERE is_active = 1`).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if prev != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE signing_keys SET is_active = 0 WHERE kid = ?`, prev); err != nil {
			return "", err
		}
	}

	const ins = `INSERT INTO signing_keys (` + keyColumns + `) VALUES (?, ?, ?, ?, ?, ?, 1)`
	if _, err := tx.ExecContext(ctx, ins, k.KID, k.Algorithm, k.KeySize, k.PublicKeyPEM, k.PrivateKeyPEM, k.CreatedAt.UnixNano()); err != nil {
		if isUniqueViolation(err) {
			return "", repository.ErrConflict
		}
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	k.Active = true
	return prev, nil
}
