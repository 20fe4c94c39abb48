package dashboard

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"bizdash/api"
	"bizdash/core/auth"
	"bizdash/core/module"
	"bizdash/core/session"
	cmsRepo "bizdash/model/repository/cms"
	proposalRepo "bizdash/model/repository/proposal"
)

func init() {
	api.RegisterDashboard(RegisterDashboardRoutes)
}

// Stats are the counters on the dashboard home.
type Stats struct {
	Proposals int64
	Pages     int64
	Posts     int64
	Media     int64
}

type handler struct {
	deps *module.Deps
	auth *auth.Service
}

// RegisterDashboardRoutes mounts home, login, password and settings pages on the /dashboard group.
func RegisterDashboardRoutes(g *echo.Group, deps *module.Deps) {
	h := &handler{deps: deps, auth: auth.NewService(deps.DB, deps.Config.BcryptCost)}

	g.GET("", h.home)
	g.GET("/", h.home)
	g.GET("/login", h.loginForm)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/change-password", h.passwordForm)
	g.POST("/change-password", h.changePassword)

	g.GET("/settings", h.settingsPage)
	g.POST("/settings", h.saveSettings)
	g.POST("/theme/toggle", h.toggleTheme)
	g.GET("/api/current-theme", h.currentTheme)
}

func (h *handler) home(c echo.Context) error {
	ctx := c.Request().Context()
	var st Stats

	// Parallel counts using errgroup
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		st.Proposals, err = proposalRepo.NewProposalRepository(h.deps.DB).Count(gctx)
		return err
	})
	eg.Go(func() error {
		var err error
		st.Pages, st.Posts, st.Media, err = cmsRepo.NewCMSRepository(h.deps.DB, h.deps.Cache, h.deps.Logger).Counts(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		h.deps.Logger.Error("dashboard stats failed", "error", err)
	}

	return c.Render(http.StatusOK, "dashboard/index.html", h.deps.DashboardData(c, "Dashboard", echo.Map{"Stats": st}))
}

func (h *handler) loginForm(c echo.Context) error {
	if session.Get(c).Authenticated() {
		return c.Redirect(http.StatusFound, module.DashboardPrefix)
	}
	return c.Render(http.StatusOK, "dashboard/login.html", h.deps.DashboardData(c, "Login", nil))
}

func (h *handler) login(c echo.Context) error {
	username := c.FormValue("username")
	user, err := h.auth.Login(c.Request().Context(), username, c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) && !errors.Is(err, auth.ErrInvalidPassword) {
			return err
		}
		h.deps.Logger.Warn("login failed", "username", username, "ip", c.RealIP())
		return c.Render(http.StatusUnauthorized, "dashboard/login.html", h.deps.DashboardData(c, "Login", echo.Map{
			"Username": username,
			"Message":  "Invalid username or password",
		}))
	}
	if err := h.deps.Sessions.Login(c, user.ID, user.Username); err != nil {
		return err
	}
	h.deps.Logger.Info("login", "username", user.Username, "ip", c.RealIP())
	return c.Redirect(http.StatusFound, module.DashboardPrefix)
}

func (h *handler) logout(c echo.Context) error {
	if err := h.deps.Sessions.Destroy(c); err != nil {
		h.deps.Logger.Warn("session destroy failed", "error", err)
	}
	return c.Redirect(http.StatusFound, auth.LoginPath)
}

func (h *handler) passwordForm(c echo.Context) error {
	return c.Render(http.StatusOK, "dashboard/change-password.html", h.deps.DashboardData(c, "Change password", nil))
}

func (h *handler) changePassword(c echo.Context) error {
	s := session.Get(c)
	err := h.auth.ChangePassword(c.Request().Context(), s.Data.UserID, c.FormValue("new_password"))
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		return c.Render(http.StatusUnprocessableEntity, "dashboard/change-password.html", h.deps.DashboardData(c, "Change password", echo.Map{
			"Message": "The new password must be at least 6 characters",
		}))
	case err != nil:
		return err
	}
	h.deps.Logger.Info("password changed", "username", s.Data.Username)
	return c.Render(http.StatusOK, "dashboard/change-password.html", h.deps.DashboardData(c, "Change password", echo.Map{
		"Message": "Password changed",
		"Success": true,
	}))
}

func sessionUser(c echo.Context) string {
	return session.Get(c).Data.Username
}
