package bootstrap

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/store/adapters/memory"
)

// flakyRepo falla las primeras n lecturas del activo.
type flakyRepo struct {
	repository.KeyRepository
	failures atomic.Int32
	calls    atomic.Int32
	rotates  atomic.Int32
}

func (r *flakyRepo) GetActive(ctx context.Context) (*repository.SigningKey, error) {
	r.calls.Add(1)
	if r.failures.Load() > 0 {
		r.failures.Add(-1)
		return nil, errors.New("connection refused")
	}
	return r.KeyRepository.GetActive(ctx)
}

func (r *flakyRepo) Rotate(ctx context.Context, k *repository.SigningKey) (string, error) {
	r.rotates.Add(1)
	return r.KeyRepository.Rotate(ctx, k)
}

func newFixture(failures int32) (*flakyRepo, *jwtx.KeyManager) {
	repo := &flakyRepo{KeyRepository: memory.New().Keys()}
	repo.failures.Store(failures)
	return repo, jwtx.NewKeyManager(repo, jwtx.KeyManagerOptions{DefaultKeySize: 1024})
}

var fastRetry = KeysConfig{RetryAttempts: 3, FailFast: true, InitialBackoff: time.Millisecond}

func TestEnsureActiveKey_EmptyStoreCreatesOne(t *testing.T) {
	repo, km := newFixture(0)

	kid, err := EnsureActiveKey(context.Background(), km, fastRetry)
	require.NoError(t, err)
	assert.NotEmpty(t, kid)
	assert.EqualValues(t, 1, repo.rotates.Load())

	keys, err := km.ListKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, 1024, keys[0].KeySize)
	assert.True(t, keys[0].Active)
}

func TestEnsureActiveKey_ExistingKeyUntouched(t *testing.T) {
	repo, km := newFixture(0)
	existing, err := km.GenerateAndActivate(context.Background(), km.DefaultKeySize())
	require.NoError(t, err)

	kid, err := EnsureActiveKey(context.Background(), km, fastRetry)
	require.NoError(t, err)
	assert.Equal(t, existing.KID, kid)
	assert.EqualValues(t, 1, repo.rotates.Load())
}

func TestEnsureActiveKey_RetriesTransientStoreErrors(t *testing.T) {
	repo, km := newFixture(2)

	kid, err := EnsureActiveKey(context.Background(), km, fastRetry)
	require.NoError(t, err)
	assert.NotEmpty(t, kid)
	assert.Zero(t, repo.failures.Load())
	assert.EqualValues(t, 1, repo.rotates.Load())
}

func TestEnsureActiveKey_StoreDownFailFast(t *testing.T) {
	repo, km := newFixture(100)

	_, err := EnsureActiveKey(context.Background(), km, fastRetry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwtx.ErrStoreUnavailable))
	assert.EqualValues(t, 3, repo.calls.Load())
	assert.Zero(t, repo.rotates.Load())
}

func TestEnsureActiveKey_StoreDownContinue(t *testing.T) {
	_, km := newFixture(100)
	cfg := fastRetry
	cfg.FailFast = false

	kid, err := EnsureActiveKey(context.Background(), km, cfg)
	assert.NoError(t, err)
	assert.Empty(t, kid)
}

func TestEnsureActiveKey_InvalidSizeIsPermanent(t *testing.T) {
	repo, km := newFixture(0)
	cfg := fastRetry
	cfg.KeySize = 512
	cfg.FailFast = false

	_, err := EnsureActiveKey(context.Background(), km, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwtx.ErrInvalidKeySize))
	assert.EqualValues(t, 2, repo.calls.Load(), "no retries")
	assert.Zero(t, repo.rotates.Load())
}
