// Package migrations embeds the goose SQL migrations so the binary and the
// contract tests apply the same schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
