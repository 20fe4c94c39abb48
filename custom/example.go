// Package custom shows how site-specific code hooks into the registries without touching core packages.
package custom

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"bizdash/api"
	"bizdash/cmd"
	"bizdash/core/module"
	"bizdash/cron"
	gqlregistry "bizdash/graphql/registry"
)

func init() {
	// GraphQL extension: { _extension(name: "siteInfo") }
	gqlregistry.Register("siteInfo", SiteInfo)

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:hello",
		Short: "Custom command example",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), "Hello from custom command")
		},
	})

	// Cron job
	cron.Register("custom:heartbeat", "@every 1h", func(ctx context.Context, deps *module.Deps, args ...string) error {
		deps.Logger.Info("custom heartbeat", "cache_entries", deps.Cache.Len())
		return nil
	})

	// HTTP route
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"pong": "ok"})
	})
}

// SiteInfo reports the company name and the enabled modules.
func SiteInfo(ctx context.Context, deps *module.Deps, _ map[string]interface{}) (interface{}, error) {
	name, err := deps.Settings.GetString(ctx, "general", "company_name", deps.Config.AppName)
	if err != nil {
		return nil, err
	}
	enabled, err := deps.Enabled.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"name": name, "enabledModules": enabled}, nil
}
