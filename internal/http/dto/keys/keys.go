// Package keys contiene los DTOs de /api/keys.
package keys

import "time"

// RotateResponse es la respuesta de POST /api/keys/rotate.
type RotateResponse struct {
	KID       string    `json:"kid"`
	CreatedAt time.Time `json:"createdAt"`
	Algorithm string    `json:"algorithm"`
	KeySize   int       `json:"keySize"`
}

// KeyInfo es un elemento de GET /api/keys. Nunca lleva material privado.
type KeyInfo struct {
	KID          string    `json:"kid"`
	PublicKeyPEM string    `json:"publicKeyPem"`
	CreatedAt    time.Time `json:"createdAt"`
	IsActive     bool      `json:"isActive"`
	Algorithm    string    `json:"algorithm"`
}

// ActiveKeyResponse es la respuesta de GET /api/keys/active.
type ActiveKeyResponse struct {
	KID       string    `json:"kid"`
	Algorithm string    `json:"algorithm"`
	CreatedAt time.Time `json:"createdAt"`
}
