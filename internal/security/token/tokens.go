package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecret devuelve nBytes aleatorios en base64url sin padding.
// Se usa para los client_secret generados por el servidor.
func GenerateSecret(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", fmt.Errorf("invalid secret length %d", nBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
