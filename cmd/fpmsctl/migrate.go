package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/database"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ *cobra.Command, _ []string, a *app) error {
			return database.Migrate(a.db, a.cfg.Database.Driver, a.logger, model.All()...)
		}),
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (postgres only)",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ *cobra.Command, _ []string, a *app) error {
			if a.cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrate down needs the postgres driver, got %q", a.cfg.Database.Driver)
			}
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			return database.MigrateDown(a.db, steps)
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}
