// Package health contiene el service para health checks.
package health

import (
	"context"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	dto "github.com/dropDatabas3/keyward/internal/http/dto/health"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	StoreCheck func(ctx context.Context) error // ping al store
	RedisCheck func(ctx context.Context) error // opcional (rate.backend=redis)
	Issuer     *jwtx.Issuer                    // self-check de firma con la clave activa
	Version    string
	Timeout    time.Duration // por check; default 2s
}

type healthService struct {
	deps Deps
}

// NewHealthService crea el service de health.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

const componentHealth = "health"

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	resp := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.HealthStatus),
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}
	fail := func(name string, err error) {
		resp.Status = "unavailable"
		resp.Components[name] = dto.HealthStatus{Status: "error", Message: err.Error()}
		log.Warn("component unhealthy", logger.String("component_name", name), logger.Err(err))
	}

	if s.deps.StoreCheck != nil {
		if err := s.run(ctx, s.deps.StoreCheck); err != nil {
			fail("store", err)
		} else {
			resp.Components["store"] = dto.HealthStatus{Status: "ok"}
		}
	}
	if s.deps.RedisCheck != nil {
		if err := s.run(ctx, s.deps.RedisCheck); err != nil {
			fail("redis", err)
		} else {
			resp.Components["redis"] = dto.HealthStatus{Status: "ok"}
		}
	}
	if s.deps.Issuer != nil {
		kid, err := s.selfCheck(ctx)
		if err != nil {
			fail("keys", err)
		} else {
			resp.ActiveKeyID = kid
			resp.Components["keys"] = dto.HealthStatus{Status: "ok"}
		}
	}
	return resp
}

func (s *healthService) run(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	return check(ctx)
}

// selfCheck firma y verifica un JWT efímero con la clave activa.
func (s *healthService) selfCheck(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss": s.deps.Issuer.Iss,
		"sub": "selfcheck",
		"aud": "health",
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	}
	signed, kid, err := s.deps.Issuer.SignRaw(ctx, claims)
	if err != nil {
		return "", err
	}
	if _, err := s.deps.Issuer.Verify(ctx, signed); err != nil {
		return "", err
	}
	return kid, nil
}
