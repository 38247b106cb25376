// Package migrations embeds the SQL schema of the ingestion store.
package migrations

import "embed"

//go:embed sql/*.sql
var FS embed.FS
