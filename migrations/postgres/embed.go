// Package postgres embebe las migraciones SQL de PostgreSQL (formato goose).
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
