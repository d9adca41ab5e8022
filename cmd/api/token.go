package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/persistence"
)

func newTokenCommand() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a directory user",
		Long:  `Issue a signed bearer token for local testing. The user must exist in the configured store unless the memory store is in use.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			username := userID
			if cfg.Store.Driver != config.DriverMemory {
				ctx := contextOrBackground(cmd.Context())
				store, closeStore, err := persistence.OpenStore(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer closeStore()
				user, err := store.Users().GetUser(ctx, userID)
				if err != nil {
					return fmt.Errorf("lookup user %s: %w", userID, err)
				}
				username = user.Username
			}

			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tokens.GenerateToken(userID, username)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id")
	return cmd
}
