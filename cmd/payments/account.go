package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Khin-96/pochi-sub000/internal/app"
	"github.com/Khin-96/pochi-sub000/internal/application/accounts"
	"github.com/Khin-96/pochi-sub000/pkg/currency"
)

func newAccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage member accounts",
	}

	accountCmd.AddCommand(newAccountCreateCmd())

	return accountCmd
}

func newAccountCreateCmd() *cobra.Command {
	var req accounts.OpenRequest

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		Long: `Open a new account with the configured opening balance.
At least one of --phone or --email is required.

Example: payments account create -n "Amina W" -p 0712345678`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := app.NewApp(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			account, err := application.AccountSvc.Open(ctx, req)
			if err != nil {
				return err
			}
			token, err := application.AuthSvc.GenerateToken(ctx, account.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", account.ID)
			fmt.Fprintf(out, "name:    %s\n", account.Name)
			if account.Phone != "" {
				fmt.Fprintf(out, "phone:   %s\n", account.Phone)
			}
			if account.Email != "" {
				fmt.Fprintf(out, "email:   %s\n", account.Email)
			}
			fmt.Fprintf(out, "balance: %s\n", currency.Format(cfg.Transfer.Currency, account.Balance))
			fmt.Fprintf(out, "token:   %s\n", token)
			return nil
		},
	}

	createCmd.Flags().StringVarP(&req.Name, "name", "n", "", "account holder name")
	createCmd.Flags().StringVarP(&req.Phone, "phone", "p", "", "phone number in any accepted format")
	createCmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address")

	return createCmd
}
