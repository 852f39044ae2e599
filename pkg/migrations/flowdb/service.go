// Package flowdb holds all the migrations for the indexer database
package flowdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the indexer database
var Migrations = migrate.NewMigrations()
