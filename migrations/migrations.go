// Package migrations embeds the Postgres schema files so the binary carries
// its own schema.
package migrations

import "embed"

// FS holds every *.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
