package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bizdash/config"
	"bizdash/core/module"
	"bizdash/core/session"
	entity "bizdash/model/entity"
	authRepo "bizdash/model/repository/auth"
)

const (
	LoginPath         = "/dashboard/login"
	MinPasswordLength = 6
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Service checks credentials and manages admin passwords.
type Service struct {
	repo *authRepo.AuthRepository
	cost int
}

func NewService(db *gorm.DB, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: authRepo.NewAuthRepository(db), cost: cost}
}

// Login returns the user when username and password match.
func (s *Service) Login(ctx context.Context, username, password string) (*entity.AdminUser, error) {
	u, err := s.repo.FindUser(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return u, nil
}

// ChangePassword replaces the password of user id.
func (s *Service) ChangePassword(ctx context.Context, id uint, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// SetPassword sets the password of username, creating the user when missing.
func (s *Service) SetPassword(ctx context.Context, username, password string) (created bool, err error) {
	if len(password) < MinPasswordLength {
		return false, ErrPasswordTooShort
	}
	u, err := s.repo.FindUser(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, err
	}
	if u == nil {
		_, err = s.repo.CreateUser(ctx, username, string(hash))
		return err == nil, err
	}
	return false, s.repo.UpdatePassword(ctx, u.ID, string(hash))
}

// EnsureAdmin creates username with password if no such user exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.repo.FindUser(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, err
	}
	if _, err := s.repo.CreateUser(ctx, username, string(hash)); err != nil {
		return false, err
	}
	return true, nil
}

// Middleware requires a logged-in session on every route except the skipper paths.
// Browsers are sent to the login page; API clients get 401.
func Middleware() echo.MiddlewareFunc {
	skipper := buildSkipper()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) || session.Get(c).Authenticated() {
				return next(c)
			}
			if module.AcceptsHTML(c.Request()) {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": LoginPath})
		}
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}
