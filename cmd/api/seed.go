package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/persistence"
)

func newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and reference data from a YAML fixture file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cfg.Store.Driver == config.DriverMemory {
				return errors.New("seeding the memory store has no lasting effect; use serve --seed")
			}

			ctx := contextOrBackground(cmd.Context())
			store, closeStore, err := persistence.OpenStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()
			return persistence.SeedFromFile(ctx, store, file, logger)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixture file")
	return cmd
}
