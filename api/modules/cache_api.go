package modules

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bizdash/api"
	"bizdash/core/module"
)

func init() {
	api.RegisterDashboard(RegisterCacheRoutes)
}

// RegisterCacheRoutes lets an admin drop every cached entry, e.g. after editing settings
// rows directly in the database.
func RegisterCacheRoutes(dash *echo.Group, deps *module.Deps) {
	// POST /dashboard/api/cache/clear
	dash.POST("/api/cache/clear", func(c echo.Context) error {
		before := deps.Cache.Stats()
		deps.Cache.Clear()
		return c.JSON(http.StatusOK, echo.Map{"success": true, "cleared": before.Size})
	})
}
