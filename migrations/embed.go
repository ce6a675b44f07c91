// Package migrations embeds the SQL schema for each supported dialect.
//
// Files live under sqlite/ and postgres/ and follow the
// YYYYMMDD_HHMMSS_name.{up,down}.sql convention. The database package picks
// the directory matching the open connection's dialect.
package migrations

import (
	"embed"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
