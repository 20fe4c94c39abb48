package html

import (
	"github.com/labstack/echo/v4"
)

// RenderThemed renders <theme>/<view> when the theme defines it, otherwise public/<view>.
func RenderThemed(c echo.Context, code int, theme, view string, data interface{}) error {
	name := "public/" + view
	if t, ok := c.Echo().Renderer.(*Template); ok && theme != "" && t.Has(theme+"/"+view) {
		name = theme + "/" + view
	}
	return c.Render(code, name, data)
}
