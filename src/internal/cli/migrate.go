package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/bank-ledger/src/internal/config"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Applies pending Postgres migrations from migrationsDir. SQLite databases are migrated on open; the memory store has no schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			switch cfg.Store {
			case config.StorePostgres:
				db, err := postgres.Open(ctx, cfg.DatabaseDSN, poolOptions(cfg))
				if err != nil {
					return err
				}
				defer db.Close()

				applied, err := postgres.RunMigrations(ctx, db, cfg.MigrationsDir)
				if err != nil {
					return err
				}
				for _, version := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", len(applied))
			default:
				store, err := openStore(ctx, cfg, false)
				if err != nil {
					return err
				}
				defer store.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "store %s is up to date\n", cfg.Store)
			}
			return nil
		},
	}
}
