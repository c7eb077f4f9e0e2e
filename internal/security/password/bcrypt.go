package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost usado para secretos de clientes. bcrypt.DefaultCost (10) en producción;
// los tests pueden bajarlo a bcrypt.MinCost.
var Cost = bcrypt.DefaultCost

var ErrEmpty = errors.New("empty secret")

// Hash devuelve el hash bcrypt del secreto en texto plano.
// bcrypt solo considera los primeros 72 bytes.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

// Verify compara en tiempo constante el secreto contra el hash almacenado.
func Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
