// Package moduletest boots a module's routes on a real echo server backed by an
// in-memory database, for handler tests.
package moduletest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"bizdash/config"
	"bizdash/core/cache"
	"bizdash/core/module"
	"bizdash/core/session"
	"bizdash/core/settings"
	"bizdash/core/validate"
	"bizdash/html"
	entity "bizdash/model/entity"
	"bizdash/model/testdb"
	"bizdash/service/mail"
	"bizdash/service/media"
)

// Mailbox records sent messages.
type Mailbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *Mailbox) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Mailbox) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type Harness struct {
	Echo *echo.Echo
	Deps *module.Deps
	Mail *Mailbox
}

// New mounts table on a fresh server. Every module in table gets a minimal descriptor,
// marked core when protected, and the named modules are stored as the enabled set.
func New(t testing.TB, table module.RouteTable, enabled ...string) *Harness {
	t.Helper()
	db := testdb.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.NewCache()
	store := settings.NewStore(db, c)
	sessions := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { sessions.Close() })

	cfg := &config.Config{AppName: "Dashboard", BaseURL: "http://example.test", UploadLimit: 2 << 20}
	box := &Mailbox{}
	deps := &module.Deps{
		Config:    cfg,
		DB:        db,
		Cache:     c,
		Settings:  store,
		Enabled:   settings.NewEnabledModules(store),
		Sessions:  session.NewManager(sessions, session.Options{}, logger),
		Mailer:    box,
		Media:     media.NewService(t.TempDir(), cfg.UploadLimit, logger),
		Validator: validate.New(),
		Logger:    logger,
	}
	if err := store.Set(context.Background(), settings.ModulesCategory, settings.EnabledModulesKey, append([]string{}, enabled...), entity.SettingTypeJSON); err != nil {
		t.Fatalf("store enabled modules: %v", err)
	}

	src := module.MapSource{}
	for name := range table {
		src[name] = map[string]interface{}{"name": name, "core": settings.IsProtected(name)}
	}
	deps.Loader = module.NewLoader(src, deps.Enabled, module.WithRoutes(table), module.WithLogger(logger))

	tpl, err := html.New("")
	if err != nil {
		t.Fatalf("parse views: %v", err)
	}
	e := echo.New()
	e.Renderer = tpl
	e.Validator = deps.Validator
	e.HTTPErrorHandler = deps.HTTPErrorHandler
	e.Use(deps.Sessions.Middleware())
	ctx := context.Background()
	for _, r := range deps.Loader.MountDashboard(ctx, e.Group(module.DashboardPrefix), deps) {
		if r.Err != nil {
			t.Fatalf("mount %s: %v", r.Name, r.Err)
		}
	}
	for _, r := range deps.Loader.MountPublic(ctx, e.Group(""), deps) {
		if r.Err != nil {
			t.Fatalf("mount %s: %v", r.Name, r.Err)
		}
	}
	return &Harness{Echo: e, Deps: deps, Mail: box}
}

// Do serves one request. form, when non-nil, is sent url-encoded.
func (h *Harness) Do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderAccept, echo.MIMETextHTML)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.Echo.ServeHTTP(rec, req)
	return rec
}

// Cookies returns the cookies set by a response.
func Cookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	return rec.Result().Cookies()
}
