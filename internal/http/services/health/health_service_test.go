package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/store/adapters/memory"
)

func newIssuer(t *testing.T, withKey bool) *jwtx.Issuer {
	t.Helper()
	km := jwtx.NewKeyManager(memory.New().Keys(), jwtx.KeyManagerOptions{DefaultKeySize: 1024})
	if withKey {
		_, err := km.GenerateAndActivate(context.Background(), km.DefaultKeySize())
		require.NoError(t, err)
	}
	return jwtx.NewIssuer("https://keyward.test", km)
}

func TestCheck_Ready(t *testing.T) {
	svc := NewHealthService(Deps{
		StoreCheck: func(context.Context) error { return nil },
		RedisCheck: func(context.Context) error { return nil },
		Issuer:     newIssuer(t, true),
		Version:    "1.2.3",
	})

	resp := svc.Check(context.Background())
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.NotEmpty(t, resp.ActiveKeyID)
	for _, name := range []string{"store", "redis", "keys"} {
		assert.Equal(t, "ok", resp.Components[name].Status, name)
	}
}

func TestCheck_NoActiveKey(t *testing.T) {
	svc := NewHealthService(Deps{Issuer: newIssuer(t, false)})

	resp := svc.Check(context.Background())
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "error", resp.Components["keys"].Status)
	assert.Empty(t, resp.ActiveKeyID)
}

func TestCheck_StoreDown(t *testing.T) {
	svc := NewHealthService(Deps{
		StoreCheck: func(context.Context) error { return errors.New("connection refused") },
		Issuer:     newIssuer(t, true),
	})

	resp := svc.Check(context.Background())
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "connection refused", resp.Components["store"].Message)
	assert.Equal(t, "ok", resp.Components["keys"].Status)
}

func TestCheck_Timeout(t *testing.T) {
	svc := NewHealthService(Deps{
		RedisCheck: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		Timeout: 20 * time.Millisecond,
	})

	resp := svc.Check(context.Background())
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "error", resp.Components["redis"].Status)
}
