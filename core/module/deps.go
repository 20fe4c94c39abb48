package module

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"bizdash/config"
	"bizdash/core/cache"
	"bizdash/core/session"
	"bizdash/core/settings"
	"bizdash/core/theme"
	"bizdash/core/validate"
	"bizdash/html"
	"bizdash/service/mail"
	"bizdash/service/media"
)

// Deps is what route functions get to build handlers with.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Cache     *cache.Cache
	Settings  *settings.Store
	Enabled   *settings.EnabledModules
	Sessions  *session.Manager
	Mailer    mail.Mailer
	Media     *media.Service
	Validator *validate.Validator
	Loader    *Loader
	Logger    *slog.Logger
}

// DashboardData is the view model shared by dashboard pages: user, menu, site name and
// the error/module query parameters set by the guard redirect.
func (d *Deps) DashboardData(c echo.Context, title string, extra echo.Map) echo.Map {
	ctx := c.Request().Context()
	data := echo.Map{
		"Title":   title,
		"AppName": d.siteName(c),
		"User":    session.Get(c).Data.Username,
		"Error":   c.QueryParam("error"),
		"Module":  c.QueryParam("module"),
		"Menu":    []MenuItem{},
	}
	if d.Loader != nil {
		items, err := d.Loader.MenuItems(ctx)
		if err != nil {
			d.Logger.Warn("menu items unavailable", "error", err)
		} else {
			data["Menu"] = items
		}
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// PublicData is the view model shared by public pages.
func (d *Deps) PublicData(c echo.Context, title string, extra echo.Map) echo.Map {
	general, err := d.Settings.GetCategory(c.Request().Context(), "general")
	if err != nil {
		d.Logger.Warn("general settings unavailable", "error", err)
		general = map[string]interface{}{}
	}
	data := echo.Map{
		"Title":    title,
		"AppName":  d.siteName(c),
		"Settings": general,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// RenderPublic renders a public view through the active theme.
func (d *Deps) RenderPublic(c echo.Context, code int, view string, data interface{}) error {
	return html.RenderThemed(c, code, theme.Active(c.Request().Context(), d.Settings), view, data)
}

// NotFound renders the themed 404 page.
func (d *Deps) NotFound(c echo.Context) error {
	return d.RenderPublic(c, http.StatusNotFound, "404.html", d.PublicData(c, "Not found", nil))
}

func (d *Deps) siteName(c echo.Context) string {
	name, err := d.Settings.GetString(c.Request().Context(), "general", "company_name", "")
	if err != nil || name == "" {
		return d.Config.AppName
	}
	return name
}

// HTTPErrorHandler renders the themed 404 page for browsers hitting unknown routes or
// disabled public modules. Everything else goes to echo's default handler.
func (d *Deps) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusNotFound &&
		!strings.HasPrefix(c.Request().URL.Path, DashboardPrefix+"/api") && AcceptsHTML(c.Request()) {
		rerr := d.NotFound(c)
		if rerr == nil {
			return
		}
		d.Logger.Error("404 page render failed", "error", rerr)
	}
	if he == nil {
		d.Logger.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}
	c.Echo().DefaultHTTPErrorHandler(err, c)
}
