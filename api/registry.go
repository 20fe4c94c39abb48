package api

import (
	"sync"

	"github.com/labstack/echo/v4"

	"bizdash/core/module"
	"bizdash/core/registry"
)

var mu sync.Mutex

// --- /dashboard routes owned by the core (authenticated, never guarded) ---

// DashboardFunc registers routes on the /dashboard group.
type DashboardFunc func(g *echo.Group, deps *module.Deps)

func getDashboard() []DashboardFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryAPI); ok && v != nil {
		return v.([]DashboardFunc)
	}
	return nil
}

// RegisterDashboard registers a core dashboard route set. Call from init() in api packages.
func RegisterDashboard(fn DashboardFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryAPI) {
		panic("api/registry: dashboard routes locked (register only during init)")
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryAPI, append(getDashboard(), fn))
}

// ApplyDashboard calls every registered dashboard route set. Locks the registry.
func ApplyDashboard(g *echo.Group, deps *module.Deps) {
	for _, fn := range getDashboard() {
		fn(g, deps)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryAPI)
}

// --- Root-level public routes (home, health, static) ---

// RouteFunc registers routes on the root Echo instance.
type RouteFunc func(e *echo.Echo, deps *module.Deps)

func getRoutes() []RouteFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryRoutes); ok && v != nil {
		return v.([]RouteFunc)
	}
	return nil
}

// RegisterRoute registers a root-level route set. Call from init().
func RegisterRoute(fn RouteFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryRoutes) {
		panic("api/registry: routes locked (register only during init)")
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryRoutes, append(getRoutes(), fn))
}

// RegisterGET is shorthand for a simple GET route on root.
func RegisterGET(path string, handler echo.HandlerFunc) {
	RegisterRoute(func(e *echo.Echo, _ *module.Deps) {
		e.GET(path, handler)
	})
}

// ApplyRoutes calls every registered root-level route set. Locks the registry.
func ApplyRoutes(e *echo.Echo, deps *module.Deps) {
	for _, fn := range getRoutes() {
		fn(e, deps)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryRoutes)
}
