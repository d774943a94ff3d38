// Package migrations embeds the session cache schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
