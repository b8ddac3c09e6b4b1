package migrations

import "embed"

// FS embeds the SQL migration files in this directory. They are applied
// through golang-migrate's iofs source driver on startup.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
