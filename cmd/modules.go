package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bizdash/core/app"
)

var modulesListCmd = &cobra.Command{
	Use:   "modules:list",
	Short: "List discovered modules with their enabled state",
	RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
		names, err := a.Deps.Loader.ScanModules(ctx)
		if err != nil {
			return err
		}
		status, err := a.Deps.Loader.Status(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODULE\tNAME\tVERSION\tCATEGORY\tCORE\tENABLED")
		for _, n := range names {
			st := status[n]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%t\n", n, st.DisplayName, st.Version, st.Category, st.Core, st.Enabled)
		}
		return w.Flush()
	}),
}

var modulesEnableCmd = &cobra.Command{
	Use:   "modules:enable NAME",
	Short: "Enable a discovered module",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		names, err := a.Deps.Loader.ScanModules(ctx)
		if err != nil {
			return err
		}
		if !contains(names, args[0]) {
			return fmt.Errorf("unknown module %q", args[0])
		}
		enabled, err := a.Deps.Enabled.Enable(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Enabled modules: %v\n", enabled)
		return nil
	}),
}

var modulesDisableCmd = &cobra.Command{
	Use:   "modules:disable NAME",
	Short: "Disable a module (core modules cannot be disabled)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		enabled, err := a.Deps.Enabled.Disable(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Enabled modules: %v\n", enabled)
		return nil
	}),
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(modulesListCmd, modulesEnableCmd, modulesDisableCmd)
}
