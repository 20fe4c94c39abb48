package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/core/auth"
	"bizdash/core/module"
	"bizdash/core/module/moduletest"
	"bizdash/core/settings"
	"bizdash/core/theme"
)

func newHarness(t *testing.T) *moduletest.Harness {
	t.Helper()
	table := module.RouteTable{"proposals": {}, "cms": {}, "analytics": {}}
	h := moduletest.New(t, table, "proposals", "analytics")
	RegisterDashboardRoutes(h.Echo.Group(module.DashboardPrefix, auth.Middleware()), h.Deps)
	_, err := auth.NewService(h.Deps.DB, 4).EnsureAdmin(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	return h
}

func login(t *testing.T, h *moduletest.Harness) []*http.Cookie {
	t.Helper()
	rec := h.Do(http.MethodPost, "/dashboard/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, module.DashboardPrefix, rec.Header().Get(echo.HeaderLocation))
	cookies := moduletest.Cookies(rec)
	require.NotEmpty(t, cookies)
	return cookies
}

func TestHome_RequiresLogin(t *testing.T) {
	h := newHarness(t)
	rec := h.Do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get(echo.HeaderLocation))

	rec = h.Do(http.MethodGet, "/dashboard/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	rec := h.Do(http.MethodPost, "/dashboard/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	cookies := login(t, h)
	rec = h.Do(http.MethodGet, "/dashboard", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin")

	rec = h.Do(http.MethodPost, "/dashboard/logout", url.Values{}, cookies...)
	assert.Equal(t, http.StatusFound, rec.Code)
	rec = h.Do(http.MethodGet, "/dashboard", nil, cookies...)
	assert.Equal(t, http.StatusFound, rec.Code, "session must be gone after logout")
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	cookies := login(t, h)

	rec := h.Do(http.MethodPost, "/dashboard/change-password", url.Values{"new_password": {"123"}}, cookies...)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.Do(http.MethodPost, "/dashboard/change-password", url.Values{"new_password": {"s3cret!"}}, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := auth.NewService(h.Deps.DB, 4).Login(context.Background(), "admin", "s3cret!")
	assert.NoError(t, err)
}

func TestSaveSettings_ReconcilesModules(t *testing.T) {
	h := newHarness(t)
	cookies := login(t, h)
	ctx := context.Background()

	form := url.Values{
		"company_name":    {"  Acme Ltd  "},
		"contact_email":   {"owner@acme.test"},
		"enabled_modules": {"cms"},
	}
	rec := h.Do(http.MethodPost, "/dashboard/settings", form, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Core modules stay enabled: proposals")

	name, err := h.Deps.Settings.GetString(ctx, generalCategory, "company_name", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", name)

	enabled, err := h.Deps.Enabled.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"proposals", "cms"}, enabled)

	form["enabled_modules"] = []string{"proposals", "cms"}
	rec = h.Do(http.MethodPost, "/dashboard/settings", form, cookies...)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard/settings?saved=1", rec.Header().Get(echo.HeaderLocation))
}

func TestSettingsPage_CoreModulesChecked(t *testing.T) {
	table := module.RouteTable{"proposals": {}, "dashboard": {}, "cms": {}}
	h := moduletest.New(t, table, "proposals")
	RegisterDashboardRoutes(h.Echo.Group(module.DashboardPrefix, auth.Middleware()), h.Deps)
	_, err := auth.NewService(h.Deps.DB, 4).EnsureAdmin(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	cookies := login(t, h)

	rec := h.Do(http.MethodGet, "/dashboard/settings", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	// dashboard is not in the stored set yet but is always on.
	assert.Contains(t, body, `value="dashboard" checked disabled`)
	assert.Contains(t, body, `value="proposals" checked disabled`)
	assert.NotContains(t, body, `value="cms" checked`)
}

func TestReconcileModules(t *testing.T) {
	h := moduletest.New(t, module.RouteTable{}, "proposals", "analytics")
	ctx := context.Background()

	kept, err := reconcileModules(ctx, h.Deps.Enabled, []string{"proposals", "cms", "analytics", "notifications"}, []string{"cms", "notifications"})
	require.NoError(t, err)
	assert.Equal(t, []string{"proposals"}, kept)

	enabled, err := h.Deps.Enabled.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"proposals", "cms", "notifications"}, enabled)

	// Modules that were not discovered are left alone.
	require.NoError(t, h.Deps.Settings.Set(ctx, settings.ModulesCategory, settings.EnabledModulesKey, []string{"proposals", "legacy"}, "json"))
	_, err = reconcileModules(ctx, h.Deps.Enabled, []string{"proposals"}, []string{"proposals"})
	require.NoError(t, err)
	enabled, err = h.Deps.Enabled.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"proposals", "legacy"}, enabled)
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t)
	cookies := login(t, h)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/theme/toggle", strings.NewReader(`{"useModern":true}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.Echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"theme":"modern"}`, rec.Body.String())
	assert.Equal(t, theme.Modern, theme.Active(context.Background(), h.Deps.Settings))

	rec = h.Do(http.MethodGet, "/dashboard/api/current-theme", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"modern","useModern":true}`, rec.Body.String())
}
