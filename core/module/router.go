package module

import (
	"github.com/labstack/echo/v4"
)

// Surface is the mount target of a route collection.
type Surface string

const (
	SurfaceDashboard Surface = "dashboard"
	SurfacePublic    Surface = "public"
)

// Router registers routes on an echo group with the owning module's guard in front of each.
// The guard is attached per route rather than with Group.Use, so it never runs for paths
// the module does not own.
type Router struct {
	group   *echo.Group
	guard   echo.MiddlewareFunc
	Module  string
	Surface Surface
}

func newRouter(g *echo.Group, guard echo.MiddlewareFunc, name string, s Surface) *Router {
	return &Router{group: g, guard: guard, Module: name, Surface: s}
}

func (r *Router) with(m []echo.MiddlewareFunc) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{r.guard}, m...)
}

func (r *Router) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return r.group.GET(path, h, r.with(m)...)
}

func (r *Router) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return r.group.POST(path, h, r.with(m)...)
}
