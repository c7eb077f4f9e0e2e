// Package jwks contiene el controller de /oauth2/jwks.
package jwks

import (
	"context"
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/keyward/internal/http/errors"
	"github.com/dropDatabas3/keyward/internal/http/helpers"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

// Source devuelve el JWKS serializado (jwtx.JWKSCache lo implementa).
type Source interface {
	Get(ctx context.Context) (json.RawMessage, error)
}

// JWKSController publica las claves públicas.
type JWKSController struct {
	src Source
}

func NewJWKSController(src Source) *JWKSController {
	return &JWKSController{src: src}
}

// GetJWKS maneja GET /oauth2/jwks.
func (c *JWKSController) GetJWKS(w http.ResponseWriter, r *http.Request) {
	data, err := c.src.Get(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("jwks build failed",
			logger.Layer("controller"), logger.Op("JWKSController.GetJWKS"), logger.Err(err))
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	helpers.WriteRawJSON(w, http.StatusOK, data)
}
