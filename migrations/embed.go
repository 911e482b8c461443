// Package migrations embeds the versioned SQL schema for each SQL backend.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Sub returns the migration directory for one backend ("sqlite" or "postgres").
func Sub(dialect string) (fs.FS, error) {
	return fs.Sub(FS, dialect)
}
