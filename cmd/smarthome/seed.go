package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/seed"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo data set",
		Long: `Load demo homes, users, rooms, devices, sensors, 1000 events over
the last 30 days, automation rules and 500 audit log entries.

Accounts created:

  admin@example.com / admin123   (admin)
  user1@example.com / pass1 ... user5@example.com / pass5

The schema is migrated first. Seeding refuses to touch a database that
already has homes unless --reset is given, which deletes every row.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDatabase(*configPath)
			if err != nil {
				return err
			}
			defer closeDB(db, logging.Default())

			ctx := cmd.Context()
			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			sum, err := seed.Run(ctx, db, seed.Options{Reset: reset})
			if errors.Is(err, seed.ErrNotEmpty) {
				return fmt.Errorf("%w (use --reset to replace it)", err)
			}
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}

			printSeedSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete all existing rows before seeding")
	return cmd
}

func printSeedSummary(w io.Writer, sum seed.Summary) {
	color.New(color.FgGreen).Fprintln(w, "✓ Seeding complete")
	rows := []struct {
		label string
		n     int
	}{
		{"Homes", sum.Homes},
		{"Users", sum.Users},
		{"Rooms", sum.Rooms},
		{"Devices", sum.Devices},
		{"Sensors", sum.Sensors},
		{"Events", sum.Events},
		{"Rules", sum.Rules},
		{"Logs", sum.Logs},
	}
	faint := color.New(color.Faint)
	for _, r := range rows {
		faint.Fprintf(w, "  %-8s", r.label)
		fmt.Fprintf(w, " %d\n", r.n)
	}
}
