package migrations

import "embed"

// FS contains embedded SQLite migrations for the map archive.
//
//go:embed *.sql
var FS embed.FS
