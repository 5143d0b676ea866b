// Package migrations embeds the goose migrations of the backend PostgreSQL
// schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
