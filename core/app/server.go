package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"bizdash/api"
	"bizdash/core/auth"
	"bizdash/core/module"
	"bizdash/core/registry"
	"bizdash/cron"
	"bizdash/html"
)

// AssetsDir holds the static files served under /assets.
const AssetsDir = "assets"

const shutdownTimeout = 10 * time.Second

var bannerFonts = []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "doom", "larry3d", "puffy", "rectangles"}

// Run serves HTTP and the cron scheduler until ctx is cancelled, then shuts both down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	e, err := a.NewServer(ctx)
	if err != nil {
		return err
	}
	scheduler, err := cron.StartCron(a.Deps)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	figure.NewFigure(a.Config.AppName, bannerFonts[rand.Intn(len(bannerFonts))], true).Print()
	a.Logger.Info("server starting", "addr", a.Config.Addr(), "dashboard", a.Config.BaseURL+module.DashboardPrefix, "env", a.Config.Env)

	errc := make(chan error, 1)
	go func() {
		if err := e.Start(a.Config.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if !ok {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	a.Logger.Info("server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// NewServer builds the echo instance: middleware, renderer, core routes and every module.
func (a *App) NewServer(ctx context.Context) (*echo.Echo, error) {
	deps := a.Deps
	tpl, err := html.New(AssetsDir)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Debug = a.Config.Debug
	e.Renderer = tpl
	e.Validator = deps.Validator
	e.HTTPErrorHandler = deps.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(requestDuration)
	e.Use(requestLogger(a.Logger))
	if a.Config.EnableCompression {
		e.Use(middleware.Gzip())
	}
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))
	if a.Config.EnableRateLimiting {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(100.0 / 60), Burst: 100, ExpiresIn: 15 * time.Minute},
		)))
	}
	e.Use(middleware.BodyLimit(strconv.FormatInt(a.Config.UploadLimit+(1<<20), 10)))
	e.Use(deps.Sessions.Middleware())

	api.ApplyRoutes(e, deps)

	dash := e.Group(module.DashboardPrefix, auth.Middleware())
	api.ApplyDashboard(dash, deps)
	report(a.Logger, deps.Loader.MountDashboard(ctx, dash, deps))
	report(a.Logger, deps.Loader.MountPublic(ctx, e.Group(""), deps))
	return e, nil
}

func report(lg *slog.Logger, results []module.LoadResult) {
	for _, r := range results {
		if r.Err != nil {
			lg.Error("module not loaded", "module", r.Name, "surface", r.Surface, "error", r.Err)
		}
	}
}

// requestDuration sets X-Request-Duration-ms on every response.
func requestDuration(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		c.Set(registry.KeyRequestStart, start)
		c.Response().Before(func() {
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		})
		return next(c)
	}
}

func requestLogger(lg *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			lg.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
