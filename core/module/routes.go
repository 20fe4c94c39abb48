package module

import (
	"sync"

	"bizdash/core/registry"
)

// RouteFunc mounts one surface of a module.
type RouteFunc func(r *Router, deps *Deps)

// Routes holds the route collections a module contributes. Either may be nil.
type Routes struct {
	Dashboard RouteFunc
	Public    RouteFunc
}

func (r Routes) For(s Surface) RouteFunc {
	switch s {
	case SurfaceDashboard:
		return r.Dashboard
	case SurfacePublic:
		return r.Public
	}
	return nil
}

// RouteTable maps module directory names to their route collections.
type RouteTable map[string]Routes

var mu sync.Mutex

func getRoutes() RouteTable {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryModules); ok && v != nil {
		return v.(RouteTable)
	}
	return RouteTable{}
}

// RegisterRoutes registers the route collections of a module. Call from init() in module packages.
func RegisterRoutes(name string, routes Routes) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryModules) {
		panic("module/routes: locked (register only during init)")
	}
	table := getRoutes()
	if _, ok := table[name]; ok {
		panic("module/routes: duplicate module " + name)
	}
	table[name] = routes
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryModules, table)
}

// RegisterHandler registers a single route collection, mounted on the dashboard surface.
func RegisterHandler(name string, fn RouteFunc) {
	RegisterRoutes(name, Routes{Dashboard: fn})
}

// RegisteredRoutes returns a copy of every collection registered so far.
func RegisteredRoutes() RouteTable {
	out := RouteTable{}
	for k, v := range getRoutes() {
		out[k] = v
	}
	return out
}

// LockRoutes freezes the global table; later registrations panic.
func LockRoutes() {
	registry.GlobalRegistry.Lock(registry.KeyRegistryModules)
}
