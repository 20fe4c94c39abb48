package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"bizdash/core/registry"
	"bizdash/core/session"
	"bizdash/model/testdb"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(testdb.Open(t), bcrypt.MinCost)
}

func TestEnsureAdmin_Login(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	created, err := s.EnsureAdmin(ctx, "admin", "admin123")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin = %v, %v; want true, nil", created, err)
	}
	created, err = s.EnsureAdmin(ctx, "admin", "other")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin = %v, %v; want false, nil", created, err)
	}

	u, err := s.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Username != "admin" {
		t.Errorf("Username = %q", u.Username)
	}
	if _, err := s.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := s.Login(ctx, "ghost", "admin123"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	s.EnsureAdmin(ctx, "admin", "admin123")
	u, _ := s.Login(ctx, "admin", "admin123")

	if err := s.ChangePassword(ctx, u.ID, "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password err = %v", err)
	}
	if err := s.ChangePassword(ctx, u.ID, "longer-secret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := s.Login(ctx, "admin", "longer-secret"); err != nil {
		t.Errorf("Login with new password: %v", err)
	}
}

func TestSetPassword_CreatesMissingUser(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	created, err := s.SetPassword(ctx, "ops", "secret1")
	if err != nil || !created {
		t.Fatalf("SetPassword = %v, %v", created, err)
	}
	created, err = s.SetPassword(ctx, "ops", "secret2")
	if err != nil || created {
		t.Fatalf("SetPassword existing = %v, %v", created, err)
	}
	if _, err := s.Login(ctx, "ops", "secret2"); err != nil {
		t.Errorf("Login: %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	g := e.Group("/dashboard", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Test-User") != "" {
				c.Set(registry.KeySession, &session.Session{ID: "x", Data: session.Data{UserID: 1}})
			}
			return next(c)
		}
	}, Middleware())
	g.GET("", func(c echo.Context) error { return c.String(http.StatusOK, "home") })
	g.GET("/login", func(c echo.Context) error { return c.String(http.StatusOK, "login") })

	cases := []struct {
		path, accept, user string
		want               int
	}{
		{"/dashboard", "text/html", "", http.StatusFound},
		{"/dashboard", "application/json", "", http.StatusUnauthorized},
		{"/dashboard/login", "text/html", "", http.StatusOK},
		{"/dashboard", "text/html", "1", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set(echo.HeaderAccept, tc.accept)
		if tc.user != "" {
			req.Header.Set("X-Test-User", tc.user)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s accept=%s user=%q: status = %d, want %d", tc.path, tc.accept, tc.user, rec.Code, tc.want)
		}
	}
}
