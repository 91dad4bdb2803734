package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selivandex/finvani-sentiment/internal/adapters/database"
)

var errDatabaseDisabled = errors.New("database is not enabled (set DB_ENABLED=true)")

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the article mirror schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withDatabase(cmd, func(db *database.DB) error {
					return database.RunMigrations(db.Conn(), a.cfg.Database.MigrationsPath)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last applied migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withDatabase(cmd, func(db *database.DB) error {
					return database.RollbackMigration(db.Conn(), a.cfg.Database.MigrationsPath)
				})
			},
		},
	)
	return cmd
}

func (a *app) withDatabase(cmd *cobra.Command, fn func(db *database.DB) error) error {
	if !a.cfg.Database.Enabled {
		return errDatabaseDisabled
	}

	db, err := database.New(cmd.Context(), &a.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := fn(db); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "migrations in %s: %s done\n", a.cfg.Database.MigrationsPath, cmd.Name())
	return nil
}
