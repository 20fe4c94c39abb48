// Package app wires the process-wide services once and hands them out as module.Deps.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"bizdash/config"
	"bizdash/core/auth"
	"bizdash/core/cache"
	"bizdash/core/module"
	"bizdash/core/session"
	"bizdash/core/settings"
	"bizdash/core/validate"
	entity "bizdash/model/entity"
	"bizdash/service/mail"
	"bizdash/service/media"
)

// AdminUsername is the account created by Setup.
const AdminUsername = "admin"

// App owns everything a request or a command needs.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Deps   *module.Deps

	closers []io.Closer
}

// New opens the database, migrates the schema and builds the shared services.
func New(cfg *config.Config) (*App, error) {
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	config.InitRedis()
	db, err := config.NewDB()
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}
	a, err := NewWithDB(cfg, logger, db)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	a.closers = append([]io.Closer{logCloser}, a.closers...)
	return a, nil
}

// NewWithDB builds the services on an already opened db.
func NewWithDB(cfg *config.Config, logger *slog.Logger, db *gorm.DB) (*App, error) {
	if err := db.AutoMigrate(entity.All()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a := &App{Config: cfg, Logger: logger, DB: db}

	c := cache.NewCache()
	store := settings.NewStore(db, c)
	enabled := settings.NewEnabledModules(store)

	logger.Info(config.PingRedis())
	var sessStore session.Store
	if config.RedisClient != nil {
		sessStore = session.NewRedisStore(config.RedisClient)
		a.closers = append(a.closers, config.RedisClient)
	} else {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		sessStore = mem
		a.closers = append(a.closers, mem)
	}

	a.Deps = &module.Deps{
		Config:   cfg,
		DB:       db,
		Cache:    c,
		Settings: store,
		Enabled:  enabled,
		Sessions: session.NewManager(sessStore, session.Options{
			TTL:    cfg.SessionTTL,
			Secure: cfg.SessionSecure,
		}, logger),
		Mailer:    mail.New(cfg, logger),
		Media:     media.NewService(cfg.UploadsDir, cfg.UploadLimit, logger),
		Validator: validate.New(),
		Loader: module.NewLoader(module.NewDirSource(os.DirFS(cfg.ModulesDir)), enabled,
			module.WithLogger(logger)),
		Logger: logger,
	}
	return a, nil
}

// Setup creates the admin user and the upload directories. It is safe to run repeatedly.
func (a *App) Setup(ctx context.Context) error {
	created, err := auth.NewService(a.DB, a.Config.BcryptCost).EnsureAdmin(ctx, AdminUsername, a.Config.DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		a.Logger.Warn("admin user created with the default password, change it after first login", "username", AdminUsername)
	}
	for _, dir := range []string{a.Config.UploadsDir, filepath.Join(a.Config.UploadsDir, "cms"), filepath.Join(a.Config.UploadsDir, "logos")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Close releases sessions, redis and log files.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
