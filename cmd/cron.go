package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bizdash/core/app"
	"bizdash/cron"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		if jobName != "" {
			name := strings.ToLower(jobName)
			fmt.Printf("Running cron job: %s\n", name)
			return cron.RunJob(ctx, a.Deps, name, args...)
		}
		fmt.Println("Starting cron scheduler...")
		c, err := cron.StartCron(a.Deps)
		if err != nil {
			return err
		}
		fmt.Printf("Cron scheduler started with %s. Press Ctrl+C to exit.\n", strings.Join(cron.Names(), ", "))
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	}),
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
