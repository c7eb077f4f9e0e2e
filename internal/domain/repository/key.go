package repository

import (
	"context"
	"time"
)

// SigningKey es el registro persistido de un par de claves de firma.
// El material viaja siempre como PEM; la decodificación vive en internal/jwt.
type SigningKey struct {
	KID           string // UUID, inmutable
	Algorithm     string // "RS256", fijo desde la creación
	KeySize       int    // bits del módulo RSA
	PublicKeyPEM  string
	PrivateKeyPEM string // vacío en listados
	CreatedAt     time.Time
	Active        bool
}

// WithoutPrivate devuelve una copia sin material privado.
func (k SigningKey) WithoutPrivate() SigningKey {
	k.PrivateKeyPEM = ""
	return k
}

// KeyRepository define operaciones sobre claves de firma.
//
// Invariante: en cualquier estado confirmado existe como máximo una clave con
// Active == true. Rotate es la única operación que cambia el flag.
type KeyRepository interface {
	// ─── Lectura ───

	// GetActive obtiene la clave activa. ErrNotFound si no hay ninguna.
	GetActive(ctx context.Context) (*SigningKey, error)

	// GetByKID busca una clave por su Key ID. ErrNotFound si no existe.
	GetByKID(ctx context.Context, kid string) (*SigningKey, error)

	// List devuelve todas las claves (activa e históricas), más recientes primero.
	// Las implementaciones no deben devolver PrivateKeyPEM.
	List(ctx context.Context) ([]SigningKey, error)

	// ─── Escritura ───

	// Insert guarda una clave tal cual (upsert por KID). No toca otras claves.
	// Si key.Active es true y ya existe otra activa devuelve ErrConflict.
	Insert(ctx context.Context, key *SigningKey) error

	// Rotate desactiva la clave activa actual (si existe) e inserta key como
	// activa, en una sola unidad atómica. Devuelve el KID desactivado o "".
	Rotate(ctx context.Context, key *SigningKey) (previousKID string, err error)
}
