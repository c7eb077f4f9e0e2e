// Package clients contiene el controller de /api/clients.
package clients

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/keyward/internal/http/dto/clients"
	httperrors "github.com/dropDatabas3/keyward/internal/http/errors"
	"github.com/dropDatabas3/keyward/internal/http/helpers"
	mw "github.com/dropDatabas3/keyward/internal/http/middlewares"
	svc "github.com/dropDatabas3/keyward/internal/http/services/clients"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

// ClientsController maneja las rutas /api/clients.
type ClientsController struct {
	service svc.ClientService
}

// NewClientsController crea el controller.
func NewClientsController(service svc.ClientService) *ClientsController {
	return &ClientsController{service: service}
}

// Create maneja POST /api/clients (rate limited).
func (c *ClientsController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClientRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.Create(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, resp)
}

// Get maneja GET /api/clients/{clientId}.
func (c *ClientsController) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.Get(r.Context(), chi.URLParam(r, "clientId"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Delete maneja DELETE /api/clients/{clientId}/admin (admin).
func (c *ClientsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := chi.URLParam(r, "clientId")

	if err := c.service.Delete(ctx, clientID); err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	logger.From(ctx).Info("client deleted by admin",
		logger.Layer("controller"),
		logger.ClientID(clientID),
		logger.Principal(mw.GetPrincipal(ctx)),
	)
	w.WriteHeader(http.StatusNoContent)
}
