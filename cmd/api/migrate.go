package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		Long:  `Apply pending Postgres migrations with goose. The schema compiled into the binary is used unless --dir or POSTGRES_MIGRATIONS_DIR points elsewhere. The sqlite and memory stores create their schema on open.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cfg.Store.Driver != config.DriverPostgres {
				logger.Info("migrations only apply to postgres", zap.String("store", cfg.Store.Driver))
				return nil
			}
			if dir == "" {
				dir = cfg.Postgres.MigrationsDir
			}

			ctx := contextOrBackground(cmd.Context())
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			return persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.MigrationSource(dir), logger)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (default: embedded schema)")
	return cmd
}
