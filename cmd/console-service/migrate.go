package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"admissions/internal/constants"
	"admissions/pkg/bootstrap"
	"admissions/pkg/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), func(m *migrator) error {
					if err := migrations.Up(m.db); err != nil {
						return err
					}
					return m.report(cmd)
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default one step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}
				return withDatabase(cmd.Context(), func(m *migrator) error {
					if err := migrations.Down(m.db, steps); err != nil {
						return err
					}
					return m.report(cmd)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), func(m *migrator) error {
					return m.report(cmd)
				})
			},
		},
	)
	return cmd
}

type migrator struct {
	db *sql.DB
}

func (m *migrator) report(cmd *cobra.Command) error {
	version, dirty, err := migrations.Version(m.db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}

func withDatabase(ctx context.Context, fn func(m *migrator) error) error {
	cfg, log, err := setup(constants.ServiceName)
	if err != nil {
		return err
	}
	defer log.Sync()
	if ctx == nil {
		ctx = context.Background()
	}

	// Migrations run explicitly here, never as a side effect of connecting.
	cfg.Database.RunMigrations = false
	connector := bootstrap.NewDatabaseConnector(cfg, log)
	db, err := connector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(&migrator{db: db})
}
