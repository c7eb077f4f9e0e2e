package jwt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	"github.com/go-jose/go-jose/v4"
)

// BuildJWKS arma el JWKS público a partir de registros de claves.
// Un PEM que no decodifica invalida todo el documento.
func BuildJWKS(keys []repository.SigningKey) (*jose.JSONWebKeySet, error) {
	set := &jose.JSONWebKeySet{
		Keys: make([]jose.JSONWebKey, 0, len(keys)),
	}
	for _, k := range keys {
		pub, err := DecodePublicKeyPEM(k.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("kid %s: %w", k.KID, err)
		}
		set.Keys = append(set.Keys, jose.JSONWebKey{
			Key:       pub,
			KeyID:     k.KID,
			Algorithm: k.Algorithm,
			Use:       "sig",
		})
	}
	return set, nil
}

// JWKSJSON construye el JWKS serializado con las claves publicables del manager.
func (m *KeyManager) JWKSJSON(ctx context.Context, maxKeys int) (json.RawMessage, error) {
	keys, err := m.PublicKeys(ctx, maxKeys)
	if err != nil {
		return nil, err
	}
	set, err := BuildJWKS(keys)
	if err != nil {
		return nil, err
	}
	return json.Marshal(set)
}
