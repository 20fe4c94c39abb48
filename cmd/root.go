package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bizdash/config"
	"bizdash/core/app"
)

var rootCmd = &cobra.Command{
	Use:           "bizdash",
	Short:         "Business dashboard server and maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute applies registered commands and runs the root command.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withApp builds the application for one command run and closes it afterwards.
func withApp(run func(ctx context.Context, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		a, err := app.New(config.LoadAppConfig())
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, a, args)
	}
}
