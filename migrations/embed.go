// Package migrations embeds the SQL schema of the postgres wallet backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
