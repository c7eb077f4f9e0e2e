// Package clients provee el service de registro de clientes OAuth.
package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	dto "github.com/dropDatabas3/keyward/internal/http/dto/clients"
	httperrors "github.com/dropDatabas3/keyward/internal/http/errors"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
	"github.com/dropDatabas3/keyward/internal/security/password"
	tokens "github.com/dropDatabas3/keyward/internal/security/token"
	"github.com/dropDatabas3/keyward/internal/validation"
)

// Policy son los defaults y límites de registro (sección oauth de la config).
type Policy struct {
	DefaultScope          string
	SecretLength          int   // bytes aleatorios del secreto generado
	DefaultAccessTokenTTL int64 // segundos
	MaxScopes             int
}

// ClientService define las operaciones de /api/clients.
type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.CreateClientResponse, error)
	Get(ctx context.Context, clientID string) (*dto.ClientResponse, error)
	Delete(ctx context.Context, clientID string) error
}

type clientService struct {
	repo   repository.ClientRepository
	policy Policy
	now    func() time.Time
}

// NewClientService crea el service.
func NewClientService(repo repository.ClientRepository, policy Policy) ClientService {
	return &clientService{
		repo:   repo,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const componentClients = "clients"

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.CreateClientResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentClients),
		logger.Op("Create"),
	)

	scopes, fields := s.validate(req)
	if len(fields) > 0 {
		log.Debug("client validation failed", logger.Any("fields", fields))
		return nil, httperrors.ErrValidationFailed.WithFields(fields)
	}

	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}
	secret := req.ClientSecret
	if strings.TrimSpace(secret) == "" {
		gen, err := tokens.GenerateSecret(s.policy.SecretLength)
		if err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		secret = gen
	}
	hash, err := password.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	ttl := s.policy.DefaultAccessTokenTTL
	if req.AccessTokenTimeToLiveSeconds != nil {
		ttl = *req.AccessTokenTimeToLiveSeconds
	}

	c := &repository.Client{
		ID:             uuid.NewString(),
		ClientID:       clientID,
		ClientName:     strings.TrimSpace(req.ClientName),
		SecretHash:     hash,
		Scopes:         scopes,
		AccessTokenTTL: ttl,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if repository.IsConflict(err) {
			log.Info("client id already registered", logger.ClientID(clientID))
			return nil, httperrors.ErrAlreadyExists.WithDetail("client_id already registered").WithCause(err)
		}
		log.Error("create client failed", logger.ClientID(clientID), logger.Err(err))
		return nil, httperrors.ErrStoreUnavailable.WithCause(err)
	}

	log.Info("client created", logger.ClientID(clientID), logger.Int("scopes", len(scopes)))
	return &dto.CreateClientResponse{
		ClientID:                     c.ClientID,
		ClientSecret:                 secret,
		ClientName:                   c.ClientName,
		Scopes:                       c.Scopes,
		AccessTokenTimeToLiveSeconds: c.AccessTokenTTL,
		CreatedAt:                    c.CreatedAt,
	}, nil
}

// validate devuelve los scopes normalizados (sin duplicados, default si vacío)
// y los errores por campo.
func (s *clientService) validate(req dto.CreateClientRequest) ([]string, map[string]string) {
	fields := map[string]string{}

	if id := strings.TrimSpace(req.ClientID); id != "" && !validation.ValidClientID(id) {
		fields["clientId"] = "must be 3-100 characters of letters, digits, '-' or '_'"
	}
	if strings.TrimSpace(req.ClientSecret) != "" && !validation.ValidSecret(req.ClientSecret) {
		fields["clientSecret"] = "must be between 8 and 255 characters"
	}
	switch name := strings.TrimSpace(req.ClientName); {
	case name == "":
		fields["clientName"] = "is required"
	case !validation.ValidClientName(name):
		fields["clientName"] = "must be between 2 and 200 characters"
	}
	if ttl := req.AccessTokenTimeToLiveSeconds; ttl != nil && !validation.ValidAccessTokenTTL(*ttl) {
		fields["accessTokenTimeToLiveSeconds"] = "must be between 60 and 86400"
	}

	scopes := dedupe(req.Scopes)
	if bad := validation.InvalidScopes(scopes); len(bad) > 0 {
		fields["scopes"] = fmt.Sprintf("invalid scope %q: only letters, digits, '.', '-' and '_'", bad[0])
	} else if s.policy.MaxScopes > 0 && len(scopes) > s.policy.MaxScopes {
		fields["scopes"] = fmt.Sprintf("too many scopes, maximum allowed: %d", s.policy.MaxScopes)
	}
	if len(scopes) == 0 {
		scopes = []string{s.policy.DefaultScope}
	}
	return scopes, fields
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *clientService) Get(ctx context.Context, clientID string) (*dto.ClientResponse, error) {
	if !validation.ValidClientID(clientID) {
		return nil, httperrors.ErrInvalidParameter.WithDetail("invalid client id format")
	}
	c, err := s.repo.GetByClientID(ctx, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.From(ctx).Debug("client not found", logger.Component(componentClients), logger.ClientID(clientID))
			return nil, httperrors.ErrClientNotFound
		}
		return nil, httperrors.ErrStoreUnavailable.WithCause(err)
	}
	return &dto.ClientResponse{
		ClientID:         c.ClientID,
		ClientName:       c.ClientName,
		Scopes:           c.Scopes,
		ClientIDIssuedAt: c.CreatedAt,
	}, nil
}

func (s *clientService) Delete(ctx context.Context, clientID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentClients),
		logger.Op("Delete"),
		logger.ClientID(clientID),
	)
	if !validation.ValidClientID(clientID) {
		return httperrors.ErrInvalidParameter.WithDetail("invalid client id format")
	}
	if err := s.repo.DeleteByClientID(ctx, clientID); err != nil {
		log.Error("delete client failed", logger.Err(err))
		return httperrors.ErrStoreUnavailable.WithCause(err)
	}
	log.Info("client deleted")
	return nil
}
