package migrations

import "embed"

// ActionsFS holds the action log and game registry schema.
//
//go:embed actions/*.sql
var ActionsFS embed.FS
