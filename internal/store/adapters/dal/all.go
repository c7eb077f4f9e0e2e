// Package dal importa todos los adapters para auto-registro.
// Importar este paquete en main.go para habilitar todos los drivers.
package dal

import (
	_ "github.com/dropDatabas3/keyward/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/keyward/internal/store/adapters/mongo"
	_ "github.com/dropDatabas3/keyward/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/keyward/internal/store/adapters/sqlite"
)
