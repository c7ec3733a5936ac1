package main

import (
	"github.com/spf13/cobra"

	"github.com/Khin-96/pochi-sub000/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Start the HTTP and WebSocket server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := app.NewApp(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			return application.Server().Start()
		},
	}
}
