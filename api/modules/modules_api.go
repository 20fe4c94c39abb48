package modules

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"bizdash/api"
	"bizdash/core/module"
	"bizdash/core/settings"
)

func init() {
	api.RegisterDashboard(RegisterModuleRoutes)
}

// RegisterModuleRoutes exposes module status and toggles as JSON under /dashboard/api/modules.
func RegisterModuleRoutes(dash *echo.Group, deps *module.Deps) {
	g := dash.Group("/api/modules")

	// GET /dashboard/api/modules – status of every discovered module plus cache occupancy
	g.GET("", func(c echo.Context) error {
		status, err := deps.Loader.Status(c.Request().Context())
		if err != nil {
			deps.Logger.Warn("module status without enabled set", "error", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"modules": status, "cache": deps.Cache.Stats()})
	})

	// POST /dashboard/api/modules/:name/enable
	g.POST("/:name/enable", func(c echo.Context) error {
		name := c.Param("name")
		if !deps.Loader.Has(name) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "unknown module " + name})
		}
		enabled, err := deps.Enabled.Enable(c.Request().Context(), name)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": err.Error()})
		}
		deps.Logger.Info("module enabled", "module", name)
		return c.JSON(http.StatusOK, echo.Map{"success": true, "module": name, "enabled": enabled})
	})

	// POST /dashboard/api/modules/:name/disable – protected modules answer 403
	g.POST("/:name/disable", func(c echo.Context) error {
		name := c.Param("name")
		enabled, err := deps.Enabled.Disable(c.Request().Context(), name)
		if errors.Is(err, settings.ErrProtectedModule) {
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "Module " + name + " is a core module and cannot be disabled"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": err.Error()})
		}
		deps.Logger.Info("module disabled", "module", name)
		return c.JSON(http.StatusOK, echo.Map{"success": true, "module": name, "enabled": enabled})
	})
}
