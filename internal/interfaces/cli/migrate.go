package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemGraph/internal/infrastructure/database/postgres"
	redisinfra "github.com/turtacn/ChemGraph/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const migrationLockName = "catalog-migrations"

// migrator is the part of *postgres.Migrator the commands use.
type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

type migrateOptions struct {
	lock bool
	open func(cliCtx *CLIContext) (migrator, error)
}

// NewMigrateCmd creates the migrate command group for the catalog schema.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmd(openMigrator)
}

func newMigrateCmd(open func(*CLIContext) (migrator, error)) *cobra.Command {
	opts := &migrateOptions{open: open}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the catalog database schema",
	}
	cmd.PersistentFlags().BoolVar(&opts.lock, "lock", true, "hold a redis lock so only one migration runs at a time")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, opts, func(m migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return errors.InvalidParam("steps must be an integer").WithDetail(args[0])
					}
					steps = n
				}
				return withMigrator(cmd, opts, func(m migrator) error {
					if err := m.Down(steps); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, &migrateOptions{open: opts.open}, func(m migrator) error {
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force V",
			Short: "Mark version V as applied and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.InvalidParam("version must be an integer").WithDetail(args[0])
				}
				return withMigrator(cmd, opts, func(m migrator) error {
					if err := m.Force(v); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the embedded migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := postgres.Migrations()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			},
		},
	)
	return cmd
}

func openMigrator(cliCtx *CLIContext) (migrator, error) {
	return postgres.NewMigrator(cliCtx.Config.Database, cliCtx.Logger)
}

// withMigrator runs fn against an open migrator, under the redis lock when
// opts.lock is set.
func withMigrator(cmd *cobra.Command, opts *migrateOptions, fn func(migrator) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	m, err := opts.open(cliCtx)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if !opts.lock {
		return fn(m)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()
	client, err := redisinfra.NewClient(ctx, cliCtx.Config.Redis, cliCtx.Logger)
	if err != nil {
		return fmt.Errorf("migration lock unavailable (use --lock=false to skip): %w", err)
	}
	defer func() { _ = client.Close() }()

	mu := redisinfra.NewMutex(client, migrationLockName,
		redisinfra.WithLockTTL(10*time.Minute),
		redisinfra.WithRetry(max(1, int(cliCtx.Timeout/time.Second)), time.Second))
	return mu.WithLock(ctx, func(context.Context) error { return fn(m) })
}

func printVersion(cmd *cobra.Command, m migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
	return nil
}

//Personal.AI order the ending
