// Package keys provee el service de ciclo de vida de claves de firma para la API HTTP.
package keys

import (
	"context"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	dto "github.com/dropDatabas3/keyward/internal/http/dto/keys"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

// KeyManager es lo que el service necesita de jwtx.KeyManager.
type KeyManager interface {
	DefaultKeySize() int
	GenerateAndActivate(ctx context.Context, keySize int) (*repository.SigningKey, error)
	ListKeys(ctx context.Context) ([]repository.SigningKey, error)
	GetActive(ctx context.Context) (*jwtx.ActiveKey, error)
}

// KeyService define las operaciones de /api/keys.
type KeyService interface {
	// Rotate genera una clave nueva y la deja activa. keySize == 0 usa el default;
	// cualquier otro valor fuera de rango devuelve jwtx.ErrInvalidKeySize.
	Rotate(ctx context.Context, keySize int) (*dto.RotateResponse, error)
	List(ctx context.Context) ([]dto.KeyInfo, error)
	Active(ctx context.Context) (*dto.ActiveKeyResponse, error)
}

type keyService struct {
	km KeyManager
}

// NewKeyService crea el service.
func NewKeyService(km KeyManager) KeyService {
	return &keyService{km: km}
}

const componentKeys = "keys"

func (s *keyService) Rotate(ctx context.Context, keySize int) (*dto.RotateResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentKeys),
		logger.Op("Rotate"),
	)

	if keySize == 0 {
		keySize = s.km.DefaultKeySize()
	}
	rec, err := s.km.GenerateAndActivate(ctx, keySize)
	if err != nil {
		log.Warn("rotation failed", logger.KeySize(keySize), logger.Err(err))
		return nil, err
	}

	return &dto.RotateResponse{
		KID:       rec.KID,
		CreatedAt: rec.CreatedAt,
		Algorithm: rec.Algorithm,
		KeySize:   rec.KeySize,
	}, nil
}

func (s *keyService) List(ctx context.Context) ([]dto.KeyInfo, error) {
	keys, err := s.km.ListKeys(ctx)
	if err != nil {
		logger.From(ctx).Error("list keys failed",
			logger.Layer("service"), logger.Component(componentKeys), logger.Err(err))
		return nil, err
	}

	out := make([]dto.KeyInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, dto.KeyInfo{
			KID:          k.KID,
			PublicKeyPEM: k.PublicKeyPEM,
			CreatedAt:    k.CreatedAt,
			IsActive:     k.Active,
			Algorithm:    k.Algorithm,
		})
	}
	return out, nil
}

func (s *keyService) Active(ctx context.Context) (*dto.ActiveKeyResponse, error) {
	ak, err := s.km.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ActiveKeyResponse{
		KID:       ak.KID,
		Algorithm: ak.Algorithm,
		CreatedAt: ak.CreatedAt,
	}, nil
}
