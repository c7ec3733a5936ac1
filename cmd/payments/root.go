package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Khin-96/pochi-sub000/pkg/config"
	"github.com/Khin-96/pochi-sub000/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     zerolog.Logger
)

func Execute() {
	rootCmd := &cobra.Command{
		Use:           "payments",
		Short:         "payments runs the chama peer-to-peer transfer service",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			log = logger.NewWithConfig(cfg.Logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "set the config file path")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newAccountCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
