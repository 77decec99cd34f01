// Package migrations embeds SQL migration files.
package migrations

import "embed"

// PostgresFS contains the profile store migrations (NNNN_name_up.sql / _down.sql).
//
//go:embed *.sql
var PostgresFS embed.FS
