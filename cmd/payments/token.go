package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Khin-96/pochi-sub000/internal/app"
)

func newTokenCmd() *cobra.Command {
	var accountID string

	tokenCmd := &cobra.Command{
		Use:          "token",
		Short:        "Issue a session token for an existing account",
		Example:      "payments token --account 3f1c2a7e-0d7b-4a4e-9c55-2f4d8c0b1e21",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountID == "" {
				return errors.New("--account is required")
			}

			application, cleanup, err := app.NewApp(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if _, err := application.Store.Accounts().GetByID(ctx, accountID); err != nil {
				return fmt.Errorf("failed to load account %s: %w", accountID, err)
			}

			token, err := application.AuthSvc.GenerateToken(ctx, accountID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	tokenCmd.Flags().StringVarP(&accountID, "account", "a", "", "account id")

	return tokenCmd
}
