package pg

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	store "github.com/dropDatabas3/keyward/internal/store"
	"github.com/dropDatabas3/keyward/internal/store/storetest"
)

// Requiere KEYWARD_TEST_PG_DSN apuntando a una base descartable.
func openTestPool(t *testing.T) *pgConnection {
	t.Helper()
	dsn := os.Getenv("KEYWARD_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("KEYWARD_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{Name: "postgres", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, store.Migrate(ctx, conn))

	pc := conn.(*pgConnection)
	_, err = pc.pool.Exec(ctx, `TRUNCATE signing_keys, oauth_clients`)
	require.NoError(t, err)
	return pc
}

func TestKeyRepository(t *testing.T) {
	storetest.RunKeyRepository(t, func(t *testing.T) repository.KeyRepository {
		return openTestPool(t).Keys()
	})
}

func TestClientRepository(t *testing.T) {
	storetest.RunClientRepository(t, func(t *testing.T) repository.ClientRepository {
		return openTestPool(t).Clients()
	})
}
