// Package keys contiene el controller de /api/keys.
package keys

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	httperrors "github.com/dropDatabas3/keyward/internal/http/errors"
	"github.com/dropDatabas3/keyward/internal/http/helpers"
	mw "github.com/dropDatabas3/keyward/internal/http/middlewares"
	svc "github.com/dropDatabas3/keyward/internal/http/services/keys"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

// KeysController maneja las rutas /api/keys.
type KeysController struct {
	service svc.KeyService
}

// NewKeysController crea el controller.
func NewKeysController(service svc.KeyService) *KeysController {
	return &KeysController{service: service}
}

// Rotate maneja POST /api/keys/rotate?keySize=N (admin).
func (c *KeysController) Rotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("KeysController.Rotate"),
		logger.Principal(mw.GetPrincipal(ctx)),
	)

	// Sin keySize se usa el default; presente debe estar en rango (0 incluido es inválido).
	keySize := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("keySize")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("keySize must be an integer"))
			return
		}
		if n < jwtx.MinKeySize || n > jwtx.MaxKeySize {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(
				fmt.Sprintf("keySize must be between %d and %d", jwtx.MinKeySize, jwtx.MaxKeySize)))
			return
		}
		keySize = n
	}

	resp, err := c.service.Rotate(ctx, keySize)
	if err != nil {
		appErr := httperrors.FromDomain(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("rotate failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	log.Info("key rotated", logger.KID(resp.KID), logger.KeySize(resp.KeySize))
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// List maneja GET /api/keys (admin).
func (c *KeysController) List(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Active maneja GET /api/keys/active (público).
func (c *KeysController) Active(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.Active(r.Context())
	if err != nil {
		logger.From(r.Context()).Warn("active key unavailable",
			logger.Layer("controller"), logger.Op("KeysController.Active"), logger.Err(err))
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
