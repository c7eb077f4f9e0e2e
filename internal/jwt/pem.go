package jwt

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"regexp"
	"strings"
)

const (
	pemPublicLabel  = "PUBLIC KEY"
	pemPrivateLabel = "PRIVATE KEY"
)

// armorMarker matchea los marcadores BEGIN/END aunque no estén en su propia línea.
var armorMarker = regexp.MustCompile(`-----(BEGIN|END) [A-Z0-9 ]+-----`)

// EncodePublicKeyPEM serializa la clave pública como PKIX en PEM (líneas de 64).
func EncodePublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	if pub == nil {
		return "", fmt.Errorf("%w: nil public key", ErrKeyGenerationFailed)
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: marshal pkix: %w", ErrKeyGenerationFailed, err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pemPublicLabel, Bytes: der})), nil
}

// EncodePrivateKeyPEM serializa la clave privada como PKCS#8 en PEM (líneas de 64).
func EncodePrivateKeyPEM(priv *rsa.PrivateKey) (string, error) {
	if priv == nil {
		return "", fmt.Errorf("%w: nil private key", ErrKeyGenerationFailed)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", fmt.Errorf("%w: marshal pkcs8: %w", ErrKeyGenerationFailed, err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pemPrivateLabel, Bytes: der})), nil
}

// DecodePublicKeyPEM parsea un PEM PKIX. Acepta el payload con cualquier
// distribución de whitespace (columnas TEXT que pasaron por otros sistemas).
func DecodePublicKeyPEM(text string) (*rsa.PublicKey, error) {
	der, err := armoredPayload(text)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse pkix: %w", ErrMalformedKeyMaterial, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an rsa public key (%T)", ErrMalformedKeyMaterial, key)
	}
	return pub, nil
}

// DecodePrivateKeyPEM parsea un PEM PKCS#8. Por compatibilidad también acepta PKCS#1.
func DecodePrivateKeyPEM(text string) (*rsa.PrivateKey, error) {
	der, err := armoredPayload(text)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		if pk1, err1 := x509.ParsePKCS1PrivateKey(der); err1 == nil {
			return pk1, nil
		}
		return nil, fmt.Errorf("%w: parse pkcs8: %w", ErrMalformedKeyMaterial, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an rsa private key (%T)", ErrMalformedKeyMaterial, key)
	}
	return priv, nil
}

// armoredPayload quita los marcadores BEGIN/END y todo el whitespace, y decodifica base64.
func armoredPayload(text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedKeyMaterial)
	}
	stripped := armorMarker.ReplaceAllString(text, " ")
	payload := strings.Join(strings.Fields(stripped), "")
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedKeyMaterial)
	}
	der, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrMalformedKeyMaterial, err)
	}
	return der, nil
}
