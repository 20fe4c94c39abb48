package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"bizdash/core/settings"
	"bizdash/core/theme"
	entity "bizdash/model/entity"
)

const (
	generalCategory = "general"
	logoKey         = "company_logo"
	logoDir         = "logos"
)

// generalFields are the plain text company settings edited on the settings page.
var generalFields = []string{"company_name", "contact_email", "contact_phone", "website"}

func (h *handler) settingsPage(c echo.Context) error {
	msg := ""
	if c.QueryParam("saved") == "1" {
		msg = "Settings saved"
	}
	return h.renderSettings(c, http.StatusOK, msg, msg != "")
}

func (h *handler) renderSettings(c echo.Context, code int, msg string, success bool) error {
	ctx := c.Request().Context()
	general, err := h.deps.Settings.GetCategory(ctx, generalCategory)
	if err != nil {
		return err
	}
	enabled, err := h.deps.Enabled.List(ctx)
	if err != nil {
		return err
	}
	status, err := h.deps.Loader.Status(ctx)
	if err != nil {
		return err
	}
	return c.Render(code, "dashboard/settings.html", h.deps.DashboardData(c, "Settings", echo.Map{
		"Settings":       stringValues(general),
		"EnabledModules": enabled,
		"ModuleStatus":   status,
		"Theme":          theme.Active(ctx, h.deps.Settings),
		"Message":        msg,
		"Success":        success,
	}))
}

func (h *handler) saveSettings(c echo.Context) error {
	ctx := c.Request().Context()
	for _, key := range generalFields {
		v := strings.TrimSpace(c.FormValue(key))
		if err := h.deps.Settings.Set(ctx, generalCategory, key, v, entity.SettingTypeString); err != nil {
			return err
		}
	}

	if fh, err := c.FormFile(logoKey); err == nil {
		st, err := h.deps.Media.SaveImage(fh, logoDir, "logo-", false)
		if err != nil {
			return h.renderSettings(c, http.StatusUnprocessableEntity, "Logo upload failed: "+err.Error(), false)
		}
		old, _ := h.deps.Settings.GetString(ctx, generalCategory, logoKey, "")
		if err := h.deps.Settings.Set(ctx, generalCategory, logoKey, st.Path, entity.SettingTypeString); err != nil {
			h.deps.Media.Remove(st.Path)
			return err
		}
		h.deps.Media.Remove(old)
	}

	form, err := c.FormParams()
	if err != nil {
		return err
	}
	discovered, err := h.deps.Loader.ScanModules(ctx)
	if err != nil {
		return err
	}
	kept, err := reconcileModules(ctx, h.deps.Enabled, discovered, form["enabled_modules"])
	if err != nil {
		return err
	}
	h.deps.Logger.Info("settings saved", "username", sessionUser(c), "protected_kept", kept)
	if len(kept) > 0 {
		return h.renderSettings(c, http.StatusOK,
			fmt.Sprintf("Settings saved. Core modules stay enabled: %s", strings.Join(kept, ", ")), true)
	}
	return c.Redirect(http.StatusFound, "/dashboard/settings?saved=1")
}

// reconcileModules makes the enabled set match requested for every discovered module.
// Protected modules that were not requested stay enabled and are returned.
func reconcileModules(ctx context.Context, enabled *settings.EnabledModules, discovered, requested []string) ([]string, error) {
	want := make(map[string]bool, len(requested))
	for _, n := range requested {
		want[n] = true
	}
	current, err := enabled.List(ctx)
	if err != nil {
		return nil, err
	}
	on := make(map[string]bool, len(current))
	for _, n := range current {
		on[n] = true
	}

	var kept []string
	for _, name := range discovered {
		switch {
		case want[name] && !on[name]:
			if _, err := enabled.Enable(ctx, name); err != nil {
				return nil, err
			}
		case !want[name] && on[name]:
			_, err := enabled.Disable(ctx, name)
			if errors.Is(err, settings.ErrProtectedModule) {
				kept = append(kept, name)
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return kept, nil
}

func (h *handler) toggleTheme(c echo.Context) error {
	var body struct {
		UseModern bool `json:"useModern"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}
	if err := theme.SetModern(c.Request().Context(), h.deps.Settings, body.UseModern); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": err.Error()})
	}
	name := theme.Default
	if body.UseModern {
		name = theme.Modern
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "theme": name})
}

func (h *handler) currentTheme(c echo.Context) error {
	name := theme.Active(c.Request().Context(), h.deps.Settings)
	return c.JSON(http.StatusOK, echo.Map{"theme": name, "useModern": name == theme.Modern})
}

func stringValues(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}
