package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	store "github.com/dropDatabas3/keyward/internal/store"
	"github.com/dropDatabas3/keyward/internal/store/storetest"
)

// Requiere KEYWARD_TEST_MONGO_URI (replica set, por las transacciones).
func openTestDB(t *testing.T) *mongoConnection {
	t.Helper()
	uri := os.Getenv("KEYWARD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("KEYWARD_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name:     "mongo",
		DSN:      uri,
		Database: "keyward_test_" + uuid.NewString()[:8],
	})
	require.NoError(t, err)
	mc := conn.(*mongoConnection)
	t.Cleanup(func() {
		_ = mc.db.Drop(context.Background())
		_ = conn.Close()
	})
	require.NoError(t, store.Migrate(ctx, conn))
	return mc
}

func TestKeyRepository(t *testing.T) {
	storetest.RunKeyRepository(t, func(t *testing.T) repository.KeyRepository {
		return openTestDB(t).Keys()
	})
}

func TestClientRepository(t *testing.T) {
	storetest.RunClientRepository(t, func(t *testing.T) repository.ClientRepository {
		return openTestDB(t).Clients()
	})
}
