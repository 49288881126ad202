// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/giraugh/abduction-sub000/internal/store"
)

// migrator is the subset of store.Migrator the commands use.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Pending() ([]uint, error)
	Close() error
}

// newMigrator is replaced in tests.
var newMigrator = func(databaseURL string) (migrator, error) {
	return store.NewMigrator(databaseURL)
}

// NewMigrateCmd creates the migrate subcommand. Without a subcommand it
// applies every pending migration.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back and inspect migrations of the PostgreSQL database named by DATABASE_URL.`,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			return runUp(cmd, m)
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			return runUp(cmd, m)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all match history",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("All migrations rolled back")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back when N is negative",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return oops.Code("INVALID_VERSION").With("steps", args[0]).Wrapf(err, "steps must be an integer")
			}
			if err := m.Steps(n); err != nil {
				return err
			}
			return printVersion(cmd, m)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Record VERSION as applied and clear the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return oops.Code("INVALID_VERSION").With("version", args[0]).Wrapf(err, "version must be an integer")
			}
			if err := m.Force(v); err != nil {
				return err
			}
			return printVersion(cmd, m)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			if err := printVersion(cmd, m); err != nil {
				return err
			}
			pending, err := m.Pending()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				cmd.Println("No pending migrations")
				return nil
			}
			for _, v := range pending {
				name, err := store.MigrationName(v)
				if err != nil {
					return err
				}
				cmd.Printf("Pending: %s\n", name)
			}
			return nil
		}),
	})

	return cmd
}

func withMigrator(run func(*cobra.Command, migrator, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		dbURL, err := databaseURL()
		if err != nil {
			return err
		}
		m, err := newMigrator(dbURL)
		if err != nil {
			return err
		}
		defer m.Close() //nolint:errcheck // close errors after the command are not actionable
		return run(cmd, m, args)
	}
}

func runUp(cmd *cobra.Command, m migrator) error {
	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}
	return printVersion(cmd, m)
}

func printVersion(cmd *cobra.Command, m migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("Version: %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("Version: %d\n", v)
	return nil
}

// migrateUp applies pending migrations before serving.
func migrateUp(databaseURL string) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck // close errors after the command are not actionable
	return m.Up()
}
