package jwt

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedKeyMaterial: el PEM almacenado no decodifica a una clave RSA.
	ErrMalformedKeyMaterial = errors.New("malformed_key_material")

	// ErrNoActiveKey: el store no tiene clave activa (solo esperable antes del bootstrap).
	ErrNoActiveKey = errors.New("no_active_signing_key")

	// ErrKeyGenerationFailed: fallo al generar o codificar un par de claves.
	ErrKeyGenerationFailed = errors.New("key_generation_failed")

	// ErrInvalidKeySize: tamaño fuera de [MinKeySize, MaxKeySize]. Es un ErrKeyGenerationFailed.
	ErrInvalidKeySize = fmt.Errorf("%w: invalid_key_size", ErrKeyGenerationFailed)

	// ErrStoreUnavailable: fallo de I/O contra el store de claves.
	ErrStoreUnavailable = errors.New("store_unavailable")

	// ErrKIDNotFound: no existe clave con ese kid.
	ErrKIDNotFound = errors.New("kid_not_found")
)

// storeErr envuelve un error del repositorio como ErrStoreUnavailable conservando la causa.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
