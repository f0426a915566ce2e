package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/database/seeders"
	"github.com/shashiranjanraj/laundry/pkg/database"
	"github.com/shashiranjanraj/laundry/pkg/migration"
)

// withDB loads config, connects to Mongo and runs fn.
func withDB(fn func(ctx context.Context) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck
	return fn(ctx)
}

// laundry migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context) error {
			fmt.Println("Running migrations…")
			applied, err := migration.New(database.DB).Run(ctx)
			for _, name := range applied {
				fmt.Printf("  ✅ Migrated:  %s\n", name)
			}
			if err == nil && len(applied) == 0 {
				fmt.Println("Nothing to migrate.")
			}
			return err
		})
	},
}

// laundry migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context) error {
			fmt.Println("Rolling back last batch…")
			undone, err := migration.New(database.DB).Rollback(ctx)
			for _, name := range undone {
				fmt.Printf("  ✅ Rolled back:  %s\n", name)
			}
			if err == nil && len(undone) == 0 {
				fmt.Println("Nothing to roll back.")
			}
			return err
		})
	},
}

// laundry migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context) error {
			st, err := migration.New(database.DB).Status(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH")
			for _, s := range st {
				if s.Ran {
					fmt.Fprintf(w, "%s\tRan\t%d\n", s.Name, s.Batch)
				} else {
					fmt.Fprintf(w, "%s\tPending\t-\n", s.Name)
				}
			}
			return w.Flush()
		})
	},
}

// laundry seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context) error {
			fmt.Println("Running seeders…")
			return seeders.RunAll(ctx, database.DB, os.Stdout)
		})
	},
}
