package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidIssuer = errors.New("invalid_issuer")

// Issuer firma y verifica JWT con las claves del KeyManager.
// Lo usa el readiness check para probar la clave activa de punta a punta.
type Issuer struct {
	Iss  string
	Keys *KeyManager
}

func NewIssuer(iss string, km *KeyManager) *Issuer {
	return &Issuer{Iss: iss, Keys: km}
}

// SignRaw firma un MapClaims arbitrario con la clave activa, setea header kid/typ
// y devuelve el JWT firmado junto al kid usado.
func (i *Issuer) SignRaw(ctx context.Context, claims jwtv5.MapClaims) (string, string, error) {
	ak, err := i.Keys.GetActive(ctx)
	if err != nil {
		return "", "", err
	}
	method := jwtv5.GetSigningMethod(ak.Algorithm)
	if method == nil {
		return "", "", fmt.Errorf("unsupported alg %q", ak.Algorithm)
	}
	tk := jwtv5.NewWithClaims(method, claims)
	tk.Header["kid"] = ak.KID
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(ak.Private)
	if err != nil {
		return "", "", err
	}
	return signed, ak.KID, nil
}

// Keyfunc devuelve un jwt.Keyfunc que elige la pubkey por 'kid' (activa o histórica).
// Sin kid usa la activa.
func (i *Issuer) Keyfunc(ctx context.Context) jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid != "" {
			return i.Keys.PublicKeyByKID(ctx, kid)
		}
		ak, err := i.Keys.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		return ak.Public, nil
	}
}

// Verify valida firma (RS*), iss si Iss != "" y exp/nbf con 30s de tolerancia.
func (i *Issuer) Verify(ctx context.Context, token string) (jwtv5.MapClaims, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwtv5.WithLeeway(30 * time.Second),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}
	tok, err := jwtv5.Parse(token, i.Keyfunc(ctx), opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenInvalidIssuer) {
			return nil, ErrInvalidIssuer
		}
		return nil, fmt.Errorf("invalid_jwt: %w", err)
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid_jwt")
	}
	return claims, nil
}
