package migrations

import "embed"

// Files stores forward-only SQLite migrations embedded into the binary.
//
//go:embed *.sql
var Files embed.FS
