// Package repository define las interfaces de repositorio de dominio.
//
// Estas interfaces representan contratos de negocio, independientes del
// almacenamiento subyacente (PostgreSQL, SQLite, MongoDB, memoria).
//
// Las implementaciones concretas viven en internal/store/adapters/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│    jwt.KeyManager / Services / Controllers          │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (interfaces)               │
//	│        KeyRepository, ClientRepository              │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	      ┌─────────────┬───┴─────────┬─────────────┐
//	      ▼             ▼             ▼             ▼
//	┌──────────┐  ┌──────────┐  ┌──────────┐  ┌──────────┐
//	│    pg    │  │  sqlite  │  │  mongo   │  │  memory  │
//	└──────────┘  └──────────┘  └──────────┘  └──────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
//   - Ningún repositorio expone material privado fuera de KeyRepository
package repository
