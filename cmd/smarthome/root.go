package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "smarthome",
		Short: "Smart home backend",
		Long: `Smart home backend: REST API for homes, devices, sensors, events,
automation rules and audit logs.

QUICK START:

  $ smarthome migrate up       # Create the schema
  $ smarthome seed             # Load the demo data set
  $ smarthome serve            # Start the API on :8000

Running without a subcommand is the same as 'smarthome serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", envConfigPath(),
		"path to the YAML config file (env SMARTHOME_CONFIG)")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newSeedCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

func envConfigPath() string {
	if path := os.Getenv("SMARTHOME_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openDatabase loads configuration and opens the configured store. Callers
// own the returned DB.
func openDatabase(configPath string) (*config.Config, *database.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(database.ConfigFrom(cfg.Database))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, db, nil
}

// closeDB logs rather than returns close errors; it runs from defers.
func closeDB(db *database.DB, log *logging.Logger) {
	if err := db.Close(); err != nil {
		log.Error("error closing database", "error", err)
	}
}
