package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bizdash/core/registry"
)

const DefaultCookieName = "bizdash_session"

// Session is the per-request view of a stored session.
type Session struct {
	ID    string
	Data  Data
	isNew bool
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Data.UserID != 0
}

func (s *Session) Get(key string) string {
	if s == nil {
		return ""
	}
	return s.Data.Values[key]
}

func (s *Session) Set(key, value string) {
	if s.Data.Values == nil {
		s.Data.Values = make(map[string]string)
	}
	s.Data.Values[key] = value
}

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds sessions to requests through a cookie holding a random id.
type Manager struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

func NewManager(store Store, opts Options, logger *slog.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, opts: opts, logger: logger}
}

// Middleware loads the request's session, or starts an unsaved one, and stores it on the context.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(registry.KeySession, m.load(c))
			return next(c)
		}
	}
}

func (m *Manager) load(c echo.Context) *Session {
	if cookie, err := c.Cookie(m.opts.CookieName); err == nil && cookie.Value != "" {
		data, err := m.store.Load(c.Request().Context(), cookie.Value)
		if err != nil {
			m.logger.Warn("session load failed", "error", err)
		} else if data != nil {
			return &Session{ID: cookie.Value, Data: *data}
		}
	}
	return &Session{ID: uuid.NewString(), isNew: true}
}

// Get returns the request's session. Outside the middleware it returns an empty, unsaved session.
func Get(c echo.Context) *Session {
	if s, ok := c.Get(registry.KeySession).(*Session); ok {
		return s
	}
	s := &Session{ID: uuid.NewString(), isNew: true}
	c.Set(registry.KeySession, s)
	return s
}

// Save persists the request's session and (re)sends its cookie. Call before writing the response.
func (m *Manager) Save(c echo.Context) error {
	s := Get(c)
	if err := m.store.Save(c.Request().Context(), s.ID, &s.Data, m.opts.TTL); err != nil {
		return err
	}
	s.isNew = false
	c.SetCookie(m.cookie(s.ID, int(m.opts.TTL.Seconds())))
	return nil
}

// Login rotates the session id and records the user.
func (m *Manager) Login(c echo.Context, userID uint, username string) error {
	old := Get(c)
	if !old.isNew {
		if err := m.store.Delete(c.Request().Context(), old.ID); err != nil {
			m.logger.Warn("session delete failed", "error", err)
		}
	}
	s := &Session{ID: uuid.NewString(), Data: old.Data, isNew: true}
	s.Data.UserID = userID
	s.Data.Username = username
	c.Set(registry.KeySession, s)
	return m.Save(c)
}

// Destroy deletes the stored session and expires the cookie.
func (m *Manager) Destroy(c echo.Context) error {
	s := Get(c)
	err := m.store.Delete(c.Request().Context(), s.ID)
	c.Set(registry.KeySession, &Session{ID: uuid.NewString(), isNew: true})
	c.SetCookie(m.cookie("", -1))
	return err
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
