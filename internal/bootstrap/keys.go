// Package bootstrap reconcilia el estado mínimo del servicio al arrancar.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

// KeyManager es el subconjunto del jwt.KeyManager que usa el reconciler.
type KeyManager interface {
	GetOrCreateActive(ctx context.Context, keySize int) (*jwtx.ActiveKey, error)
}

// KeysConfig controla el reconciler de claves.
type KeysConfig struct {
	KeySize        int           // <= 0 usa el default del manager
	RetryAttempts  int           // intentos totales ante errores de store; default 5
	FailFast       bool          // si false, un store caído solo se loguea
	InitialBackoff time.Duration // default 500ms
}

// EnsureActiveKey garantiza que exista una clave activa. Si el store no tiene ninguna,
// genera y activa una de cfg.KeySize bits (<= 0 usa el default del manager).
// Devuelve el kid activo.
//
// Los errores de store se reintentan con backoff exponencial. Agotados los intentos,
// con FailFast devuelve el error; sin FailFast loguea y devuelve "" sin error.
// Errores de generación o material corrupto siempre se devuelven.
func EnsureActiveKey(ctx context.Context, km KeyManager, cfg KeysConfig) (string, error) {
	log := logger.From(ctx).With(logger.Component("bootstrap"), logger.Op("EnsureActiveKey"))

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 5
	}
	eb := backoff.NewExponentialBackOff()
	if cfg.InitialBackoff > 0 {
		eb.InitialInterval = cfg.InitialBackoff
	} else {
		eb.InitialInterval = 500 * time.Millisecond
	}
	eb.MaxInterval = 20 * eb.InitialInterval

	op := func() (string, error) {
		ak, err := km.GetOrCreateActive(ctx, cfg.KeySize)
		if err != nil {
			return "", classify(err)
		}
		return ak.KID, nil
	}

	kid, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(uint(attempts)), // #nosec G115 -- attempts > 0
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Warn("store unavailable, retrying", logger.Err(err), logger.Backoff(d))
		}),
	)
	if err != nil {
		if errors.Is(err, jwtx.ErrStoreUnavailable) && !cfg.FailFast {
			log.Error("no active signing key at startup, continuing without one", logger.Err(err))
			return "", nil
		}
		return "", fmt.Errorf("bootstrap: ensure active key: %w", err)
	}

	log.Info("active signing key ready", logger.KID(kid))
	return kid, nil
}

// classify marca como permanentes los errores que no se resuelven reintentando.
func classify(err error) error {
	if errors.Is(err, jwtx.ErrStoreUnavailable) {
		return err
	}
	return backoff.Permanent(err)
}
