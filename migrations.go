package layout

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS exposes the embedded DDL for the presentations tables.
// Hosts feed these files to their own migration runner; the module never
// applies them itself.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
