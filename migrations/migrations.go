// Package migrations holds the database schema as golang-migrate files.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql migration.
//
//go:embed *.sql
var FS embed.FS
