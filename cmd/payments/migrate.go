package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Khin-96/pochi-sub000/internal/infrastructure/database"
	"github.com/Khin-96/pochi-sub000/migrations"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:          "up",
		Short:        "Apply all pending migrations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(0)
		},
	})

	var steps int
	downCmd := &cobra.Command{
		Use:          "down",
		Short:        "Roll back migrations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.New("--steps must be at least 1")
			}
			return runMigrate(-steps)
		},
	}
	downCmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of versions to roll back")
	migrateCmd.AddCommand(downCmd)

	return migrateCmd
}

func runMigrate(steps int) error {
	if cfg.Database.Driver != "postgres" {
		return errors.New("migrations require database.driver postgres")
	}

	dm, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer dm.ShutDown()

	return dm.Migrate(migrations.FS, steps)
}
