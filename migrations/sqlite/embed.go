// Package sqlite embebe las migraciones SQL de SQLite (formato goose).
package sqlite

import "embed"

//go:embed *.sql
var FS embed.FS
