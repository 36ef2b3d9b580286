// Package migrations embeds the goose SQL migrations applied at server
// startup.
package migrations

import "embed"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
