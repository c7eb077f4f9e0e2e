// Package store provee el registry de adaptadores de almacenamiento.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
)

// Adapter representa un adaptador de almacenamiento capaz de crear repositorios.
type Adapter interface {
	// Name retorna el nombre del adapter ("postgres", "sqlite", "mongo", "memory").
	Name() string

	// Connect establece conexión con el almacenamiento.
	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection representa una conexión activa.
type AdapterConnection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	// ─── Repositorios ───

	Keys() repository.KeyRepository
	Clients() repository.ClientRepository
}

// MigratableConnection la implementan las conexiones con esquema (postgres, sqlite, mongo).
type MigratableConnection interface {
	// Migrate aplica las migraciones pendientes. Es idempotente.
	Migrate(ctx context.Context) error
}

// AdapterConfig configuración para conectar a un almacenamiento.
type AdapterConfig struct {
	// Name del adapter: "postgres", "sqlite", "mongo", "memory"
	Name string

	// DSN connection string (URI para mongo)
	DSN string

	// Database nombre de la base (solo mongo)
	Database string

	// Pool settings (postgres)
	MaxOpenConns int
	MaxIdleConns int
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
	aliases    = map[string]string{
		"pg":         "postgres",
		"postgresql": "postgres",
		"mongodb":    "mongo",
		"sqlite3":    "sqlite",
		"mem":        "memory",
	}
)

// RegisterAdapter registra un adapter en el registry global. Llamar en init().
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre (acepta alias como "pg").
func GetAdapter(name string) (Adapter, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAdapter abre una conexión usando el adapter especificado en la config.
func OpenAdapter(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("adapter: %q not registered (available: %s)", cfg.Name, strings.Join(ListAdapters(), ", "))
	}
	return a.Connect(ctx, cfg)
}

// Migrate aplica migraciones si la conexión las soporta; si no, no hace nada.
func Migrate(ctx context.Context, conn AdapterConnection) error {
	if m, ok := conn.(MigratableConnection); ok {
		if err := m.Migrate(ctx); err != nil {
			return fmt.Errorf("%s: migrate: %w", conn.Name(), err)
		}
	}
	return nil
}
