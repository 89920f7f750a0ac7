// Package migrations carries the postgres schema so binaries can migrate
// without the SQL files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
