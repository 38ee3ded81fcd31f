package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema step; each file registers itself and takes
// its version from the file name.
var Migrations = migrate.NewMigrations()
