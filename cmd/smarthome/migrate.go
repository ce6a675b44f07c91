package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back or inspect schema migrations for the configured
driver (sqlite or postgres).

USAGE:

  smarthome migrate up       # Apply every pending migration
  smarthome migrate down     # Roll back the most recent migration
  smarthome migrate status   # List applied and pending migrations`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(*configPath, func(db *database.DB) error {
					if err := db.Migrate(cmd.Context()); err != nil {
						return fmt.Errorf("running migrations: %w", err)
					}
					color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(*configPath, func(db *database.DB) error {
					if err := db.MigrateDown(cmd.Context()); err != nil {
						return fmt.Errorf("rolling back migration: %w", err)
					}
					color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "✓ Rolled back one migration")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(*configPath, func(db *database.DB) error {
					applied, pending, err := db.GetMigrationStatus(cmd.Context())
					if err != nil {
						return fmt.Errorf("reading migration status: %w", err)
					}
					printMigrationStatus(cmd.OutOrStdout(), db.Dialect(), applied, pending)
					return nil
				})
			},
		},
	)
	return cmd
}

// withDB opens the configured database for the duration of fn.
func withDB(configPath string, fn func(db *database.DB) error) error {
	_, db, err := openDatabase(configPath)
	if err != nil {
		return err
	}
	defer closeDB(db, logging.Default())
	return fn(db)
}

func printMigrationStatus(w io.Writer, dialect string, applied []database.MigrationRecord, pending []database.Migration) {
	faint := color.New(color.Faint)

	fmt.Fprintf(w, "Driver: %s\n\n", dialect)
	for _, m := range applied {
		color.New(color.FgGreen).Fprintf(w, "  ✓ %s", m.Version)
		faint.Fprintf(w, "  applied %s\n", m.AppliedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	for _, m := range pending {
		color.New(color.FgYellow).Fprintf(w, "  • %s", m.Version)
		faint.Fprintf(w, "  %s (pending)\n", m.Name)
	}
	if len(applied) == 0 && len(pending) == 0 {
		faint.Fprintln(w, "  no migrations found")
	}
}
