// Package migrations embeds the schema migration files so the server can
// apply them at startup without a deploy-time copy step.
package migrations

import (
	"embed"
)

//go:embed *.up.sql
var Files embed.FS
