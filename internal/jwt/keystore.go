package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	"github.com/dropDatabas3/keyward/internal/metrics"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	MinKeySize     = 1024
	MaxKeySize     = 4096
	DefaultKeySize = 2048

	DefaultAlgorithm = "RS256"
)

// KeyManagerOptions configura el KeyManager. Los campos vacíos toman defaults.
type KeyManagerOptions struct {
	DefaultKeySize int
	Algorithm      string

	// Inyectables para tests.
	Rand   io.Reader
	Now    func() time.Time
	NewKID func() string
}

// ActiveKey es la clave activa decodificada, lista para firmar.
type ActiveKey struct {
	KID       string
	Algorithm string
	KeySize   int
	CreatedAt time.Time
	Private   *rsa.PrivateKey
	Public    *rsa.PublicKey
}

// KeyManager gestiona el ciclo de vida de las claves de firma sobre un KeyRepository.
//
// Las lecturas van siempre al store (sin cache). Las mutaciones se serializan con mu
// y cada Rotate del repositorio es atómico, por lo que nunca hay dos claves activas.
type KeyManager struct {
	repo repository.KeyRepository

	defaultSize int
	alg         string
	rand        io.Reader
	now         func() time.Time
	newKID      func() string

	mu sync.Mutex // solo mutaciones
	sf singleflight.Group

	onRotate []func(kid string)
}

// NewKeyManager crea un KeyManager. repo no puede ser nil.
func NewKeyManager(repo repository.KeyRepository, opts KeyManagerOptions) *KeyManager {
	m := &KeyManager{
		repo:        repo,
		defaultSize: opts.DefaultKeySize,
		alg:         opts.Algorithm,
		rand:        opts.Rand,
		now:         opts.Now,
		newKID:      opts.NewKID,
	}
	if m.defaultSize == 0 {
		m.defaultSize = DefaultKeySize
	}
	if m.alg == "" {
		m.alg = DefaultAlgorithm
	}
	if m.rand == nil {
		m.rand = rand.Reader
	}
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}
	if m.newKID == nil {
		m.newKID = func() string { return uuid.NewString() }
	}
	return m
}

// DefaultKeySize devuelve el tamaño usado cuando no se pide uno explícito.
func (m *KeyManager) DefaultKeySize() int { return m.defaultSize }

// Algorithm devuelve el algoritmo con el que se etiquetan las claves nuevas.
func (m *KeyManager) Algorithm() string { return m.alg }

// OnRotate registra un callback que se ejecuta tras cada rotación exitosa
// (ej: invalidar el cache de JWKS). No es seguro llamarlo concurrentemente con rotaciones.
func (m *KeyManager) OnRotate(fn func(kid string)) {
	m.onRotate = append(m.onRotate, fn)
}

// ─── Lectura ───

// GetActive lee y decodifica la clave activa.
func (m *KeyManager) GetActive(ctx context.Context) (*ActiveKey, error) {
	rec, err := m.repo.GetActive(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoActiveKey
		}
		return nil, storeErr("get active", err)
	}
	return decodeActive(rec)
}

// GetOrCreateActive devuelve la clave activa o genera una si el store está vacío.
// keySize <= 0 usa el default. Llamadas concurrentes con el store vacío comparten
// una única generación.
func (m *KeyManager) GetOrCreateActive(ctx context.Context, keySize int) (*ActiveKey, error) {
	if keySize <= 0 {
		keySize = m.defaultSize
	}
	ak, err := m.GetActive(ctx)
	if err == nil || !errors.Is(err, ErrNoActiveKey) {
		return ak, err
	}

	v, err, _ := m.sf.Do("active", func() (any, error) {
		// Otro caller pudo haber generado mientras esperábamos.
		if ak, err := m.GetActive(ctx); err == nil || !errors.Is(err, ErrNoActiveKey) {
			return ak, err
		}
		if _, err := m.GenerateAndActivate(ctx, keySize); err != nil {
			return nil, err
		}
		return m.GetActive(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ActiveKey), nil
}

// ListKeys devuelve todas las claves (más recientes primero) sin material privado.
func (m *KeyManager) ListKeys(ctx context.Context) ([]repository.SigningKey, error) {
	list, err := m.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list", err)
	}
	out := make([]repository.SigningKey, 0, len(list))
	for _, k := range list {
		out = append(out, k.WithoutPrivate())
	}
	return out, nil
}

// PublicKeys devuelve las claves publicables: la activa primero y luego las
// históricas más recientes, hasta max (max <= 0 = sin límite).
func (m *KeyManager) PublicKeys(ctx context.Context, max int) ([]repository.SigningKey, error) {
	list, err := m.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]repository.SigningKey, 0, len(list))
	for _, k := range list {
		if k.Active {
			out = append(out, k)
		}
	}
	for _, k := range list {
		if max > 0 && len(out) >= max {
			break
		}
		if !k.Active {
			out = append(out, k)
		}
	}
	return out, nil
}

// PublicKeyByKID devuelve la clave pública decodificada para un kid.
func (m *KeyManager) PublicKeyByKID(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	rec, err := m.repo.GetByKID(ctx, kid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrKIDNotFound
		}
		return nil, storeErr("get by kid", err)
	}
	return DecodePublicKeyPEM(rec.PublicKeyPEM)
}

// ─── Mutación ───

// GenerateAndActivate genera un par RSA de keySize bits y lo deja como única clave activa.
// Cualquier tamaño fuera de [MinKeySize, MaxKeySize] (incluidos 0 y negativos) devuelve
// ErrInvalidKeySize. El resultado no incluye material privado.
func (m *KeyManager) GenerateAndActivate(ctx context.Context, keySize int) (*repository.SigningKey, error) {
	log := logger.From(ctx).With(logger.Component("keystore"), logger.Op("GenerateAndActivate"))

	if keySize < MinKeySize || keySize > MaxKeySize {
		metrics.ObserveRotation("invalid_size", 0)
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidKeySize, keySize, MinKeySize, MaxKeySize)
	}

	start := time.Now()
	rec, err := m.generate(keySize)
	if err != nil {
		metrics.ObserveRotation("generation_failed", 0)
		log.Error("key generation failed", logger.KeySize(keySize), logger.Err(err))
		return nil, err
	}

	m.mu.Lock()
	prev, err := m.repo.Rotate(ctx, rec)
	m.mu.Unlock()
	if err != nil {
		metrics.ObserveRotation("store_error", 0)
		log.Error("key rotation failed", logger.KID(rec.KID), logger.Err(err))
		return nil, storeErr("rotate", err)
	}

	metrics.ObserveRotation("ok", time.Since(start))
	log.Info("signing key activated",
		logger.KID(rec.KID),
		logger.KeySize(keySize),
		logger.Algorithm(rec.Algorithm),
		zap.String("previous_kid", prev),
	)
	for _, fn := range m.onRotate {
		fn(rec.KID)
	}

	out := rec.WithoutPrivate()
	return &out, nil
}

func (m *KeyManager) generate(keySize int) (*repository.SigningKey, error) {
	priv, err := rsa.GenerateKey(m.rand, keySize)
	if err != nil {
		return nil, fmt.Errorf("%w: rsa: %w", ErrKeyGenerationFailed, err)
	}
	pubPEM, err := EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	privPEM, err := EncodePrivateKeyPEM(priv)
	if err != nil {
		return nil, err
	}
	return &repository.SigningKey{
		KID:           m.newKID(),
		Algorithm:     m.alg,
		KeySize:       keySize,
		PublicKeyPEM:  pubPEM,
		PrivateKeyPEM: privPEM,
		CreatedAt:     m.now(),
		Active:        true,
	}, nil
}

func decodeActive(rec *repository.SigningKey) (*ActiveKey, error) {
	priv, err := DecodePrivateKeyPEM(rec.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("kid %s: %w", rec.KID, err)
	}
	pub, err := DecodePublicKeyPEM(rec.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("kid %s: %w", rec.KID, err)
	}
	size := rec.KeySize
	if size == 0 {
		size = pub.N.BitLen()
	}
	return &ActiveKey{
		KID:       rec.KID,
		Algorithm: rec.Algorithm,
		KeySize:   size,
		CreatedAt: rec.CreatedAt,
		Private:   priv,
		Public:    pub,
	}, nil
}
