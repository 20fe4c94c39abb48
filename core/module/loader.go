package module

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// DefaultScanTTL is how long a scan result is reused before the source is read again.
	DefaultScanTTL = 30 * time.Second

	DashboardPrefix = "/dashboard"
)

// EnabledSet reports the names of the modules that are currently switched on.
type EnabledSet interface {
	List(ctx context.Context) ([]string, error)
}

// LoadResult is the outcome of mounting one module on one surface.
type LoadResult struct {
	Name    string
	Surface Surface
	Loaded  bool
	Err     error
	Config  *Config
}

// Status is the admin view of one module. Loaded and Enabled are independent.
type Status struct {
	DisplayName string `json:"name"`
	Version     string `json:"version"`
	Core        bool   `json:"core"`
	Loaded      bool   `json:"loaded"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Info describes a single module.
type Info struct {
	Config   *Config
	Loaded   bool
	LoadedAt time.Time
	Surfaces []Surface
}

type loadedRecord struct {
	loadedAt time.Time
	surfaces []Surface
}

// Loader discovers modules, mounts their routes behind a per-request guard and answers
// menu and status queries. Routes of every discovered module are mounted; whether they
// answer is decided by the guard on each request.
type Loader struct {
	source  Source
	enabled EnabledSet
	routes  RouteTable
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.RWMutex
	configs  map[string]*Config
	order    []string
	lastScan time.Time
	loaded   map[string]*loadedRecord
}

type LoaderOption func(*Loader)

// WithRoutes replaces the globally registered route table.
func WithRoutes(t RouteTable) LoaderOption {
	return func(l *Loader) { l.routes = t }
}

func WithScanTTL(d time.Duration) LoaderOption {
	return func(l *Loader) { l.ttl = d }
}

func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

func WithLogger(lg *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = lg }
}

func NewLoader(src Source, enabled EnabledSet, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:  src,
		enabled: enabled,
		ttl:     DefaultScanTTL,
		now:     time.Now,
		logger:  slog.Default(),
		configs: make(map[string]*Config),
		loaded:  make(map[string]*loadedRecord),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// ScanModules returns the discovered module names in discovery order. Within the scan TTL
// the previous result is returned without touching the source. A module whose descriptor
// is missing or broken is logged and left out; it never aborts the scan.
func (l *Loader) ScanModules(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	if !l.lastScan.IsZero() && l.now().Sub(l.lastScan) < l.ttl {
		names := append([]string(nil), l.order...)
		l.mu.RUnlock()
		return names, nil
	}
	l.mu.RUnlock()

	names, err := l.source.ListModules()
	if err != nil {
		return nil, err
	}
	l.logger.Info("module scan started", "count", len(names))

	configs := make(map[string]*Config, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg, err := l.LoadModuleConfig(name)
		if err != nil {
			l.logger.Warn("module config load failed", "module", name, "action", "config", "success", false, "error", err)
			continue
		}
		configs[name] = cfg
		order = append(order, name)
		l.logger.Debug("module config loaded", "module", name, "action", "config", "success", true)
	}

	l.mu.Lock()
	l.configs = configs
	l.order = order
	l.lastScan = l.now()
	l.mu.Unlock()
	return append([]string(nil), order...), nil
}

// LoadModuleConfig reads and decodes one descriptor. Missing descriptors wrap ErrConfigNotFound;
// undecodable ones are *ConfigParseError.
func (l *Loader) LoadModuleConfig(name string) (*Config, error) {
	raw, err := l.source.LoadDescriptor(name)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeConfig(name, raw)
	if err != nil {
		return nil, &ConfigParseError{Module: name, Err: err}
	}
	return cfg, nil
}

// MountDashboard mounts the dashboard collections of every discovered module on g.
func (l *Loader) MountDashboard(ctx context.Context, g *echo.Group, deps *Deps) []LoadResult {
	return l.mount(ctx, SurfaceDashboard, g, deps)
}

// MountPublic mounts the public collections of every discovered module on g.
func (l *Loader) MountPublic(ctx context.Context, g *echo.Group, deps *Deps) []LoadResult {
	return l.mount(ctx, SurfacePublic, g, deps)
}

func (l *Loader) mount(ctx context.Context, s Surface, g *echo.Group, deps *Deps) []LoadResult {
	names, err := l.ScanModules(ctx)
	if err != nil {
		l.logger.Error("module scan failed", "surface", s, "error", err)
		return nil
	}
	table := l.routes
	if table == nil {
		table = RegisteredRoutes()
		LockRoutes()
	}

	results := make([]LoadResult, 0, len(names))
	for _, name := range names {
		cfg := l.config(name)
		fn := table[name].For(s)
		if fn == nil {
			results = append(results, LoadResult{Name: name, Surface: s, Config: cfg})
			continue
		}
		if err := l.mountOne(name, s, g, fn, deps); err != nil {
			l.logger.Error("module routes load failed", "module", name, "action", "mount", "surface", s, "success", false, "error", err)
			results = append(results, LoadResult{Name: name, Surface: s, Err: err, Config: cfg})
			continue
		}
		l.markLoaded(name, s)
		l.logger.Info("module routes loaded", "module", name, "action", "mount", "surface", s, "success", true)
		results = append(results, LoadResult{Name: name, Surface: s, Loaded: true, Config: cfg})
	}
	return results
}

// mountOne runs fn, turning a panic into a RouteMountError. Routes registered before the
// panic stay on the router, still behind the guard.
func (l *Loader) mountOne(name string, s Surface, g *echo.Group, fn RouteFunc, deps *Deps) (err error) {
	defer func() {
		if p := recover(); p != nil {
			cause, ok := p.(error)
			if !ok {
				cause = fmt.Errorf("%v", p)
			}
			err = &RouteMountError{Module: name, Surface: s, Err: cause}
		}
	}()
	fn(newRouter(g, l.Guard(name, s), name, s), deps)
	return nil
}

func (l *Loader) markLoaded(name string, s Surface) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.loaded[name]
	if !ok {
		rec = &loadedRecord{loadedAt: l.now()}
		l.loaded[name] = rec
	}
	rec.surfaces = append(rec.surfaces, s)
}

func (l *Loader) config(name string) *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.configs[name]
}

// Guard gates a module's routes on the enabled set, read fresh on every request.
// A disabled public route answers 404. A disabled dashboard route redirects HTML clients to
// the dashboard home and gives everyone else a 403 JSON body. If the enabled set cannot be
// read the request is let through.
func (l *Loader) Guard(name string, s Surface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			names, err := l.enabled.List(c.Request().Context())
			if err != nil {
				l.logger.Error("module guard failed, allowing request", "module", name, "surface", s, "path", c.Path(), "error", err)
				return next(c)
			}
			if contains(names, name) {
				return next(c)
			}
			l.logger.Debug("module disabled, request blocked", "module", name, "surface", s, "path", c.Request().URL.Path)
			if s == SurfacePublic {
				return echo.ErrNotFound
			}
			if AcceptsHTML(c.Request()) {
				return c.Redirect(http.StatusFound, DisabledRedirect(name))
			}
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":    fmt.Sprintf("Module %q is disabled", name),
				"module":   name,
				"redirect": DashboardPrefix,
			})
		}
	}
}

// DisabledRedirect is where HTML clients of a disabled dashboard module are sent.
func DisabledRedirect(name string) string {
	q := url.Values{}
	q.Set("error", "module_disabled")
	q.Set("module", name)
	return DashboardPrefix + "?" + q.Encode()
}

// AcceptsHTML reports whether the client wants an HTML response. An empty Accept header
// counts as HTML, and so does */* unless JSON is named explicitly.
func AcceptsHTML(r *http.Request) bool {
	accept := r.Header.Get(echo.HeaderAccept)
	if accept == "" || strings.Contains(accept, echo.MIMETextHTML) {
		return true
	}
	return strings.Contains(accept, "*/*") && !strings.Contains(accept, echo.MIMEApplicationJSON)
}

// MenuItems returns the menu items of enabled modules ordered by Order; ties keep
// discovery order. If the enabled set cannot be read no items are returned.
func (l *Loader) MenuItems(ctx context.Context) ([]MenuItem, error) {
	names, err := l.enabled.List(ctx)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	items := make([]MenuItem, 0)
	for _, name := range l.order {
		if !contains(names, name) {
			continue
		}
		items = append(items, l.configs[name].MenuItems...)
	}
	l.mu.RUnlock()
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items, nil
}

// Status returns a snapshot of every discovered module. If the enabled set cannot be read,
// Enabled is false everywhere and the error is returned with the snapshot.
func (l *Loader) Status(ctx context.Context) (map[string]Status, error) {
	names, err := l.enabled.List(ctx)
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]Status, len(l.configs))
	for name, cfg := range l.configs {
		_, loaded := l.loaded[name]
		out[name] = Status{
			DisplayName: cfg.displayName(name),
			Version:     cfg.version(),
			Core:        cfg.Core,
			Loaded:      loaded,
			Enabled:     err == nil && contains(names, name),
			Description: cfg.Description,
			Category:    cfg.category(),
		}
	}
	return out, err
}

// Names returns the discovered module names in discovery order.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.order...)
}

// Has reports whether name was discovered by the last scan.
func (l *Loader) Has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.configs[name]
	return ok
}

// Info returns what the loader knows about one module. Config is nil for unknown names.
func (l *Loader) Info(name string) Info {
	l.mu.RLock()
	defer l.mu.RUnlock()
	info := Info{Config: l.configs[name]}
	if rec, ok := l.loaded[name]; ok {
		info.Loaded = true
		info.LoadedAt = rec.loadedAt
		info.Surfaces = append([]Surface(nil), rec.surfaces...)
	}
	return info
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
