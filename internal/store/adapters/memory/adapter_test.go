package memory

import (
	"testing"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	"github.com/dropDatabas3/keyward/internal/store/storetest"
)

func TestKeyRepository(t *testing.T) {
	storetest.RunKeyRepository(t, func(t *testing.T) repository.KeyRepository {
		return New().Keys()
	})
}

func TestClientRepository(t *testing.T) {
	storetest.RunClientRepository(t, func(t *testing.T) repository.ClientRepository {
		return New().Clients()
	})
}
