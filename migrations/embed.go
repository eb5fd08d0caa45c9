// Package migrations holds the SQL schema applied by cmd/migrate.
package migrations

import "embed"

// FS contains every migration; files ending in .down.sql revert the matching up file.
//
//go:embed *.sql
var FS embed.FS
