package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bizdash/core/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the cron scheduler",
	RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
		return a.Run(ctx)
	}),
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Migrate the schema, create the admin user and the upload directories",
	RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
		if err := a.Setup(ctx); err != nil {
			return err
		}
		a.Logger.Info("setup complete")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd, setupCmd)
}
