package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/config"
	"bizdash/core/auth"
	"bizdash/model/testdb"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	modules := filepath.Join(dir, "modules")
	require.NoError(t, os.MkdirAll(filepath.Join(modules, "cms"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modules, "cms", "module.json"), []byte(`{"name":"cms","version":"1.2.0"}`), 0o644))
	return &config.Config{
		AppName:              "Dashboard",
		ModulesDir:           modules,
		UploadsDir:           filepath.Join(dir, "uploads"),
		LogDir:               filepath.Join(dir, "logs"),
		SessionTTL:           time.Hour,
		BcryptCost:           4,
		DefaultAdminPassword: "admin123",
		UploadLimit:          1 << 20,
		MailDriver:           "console",
	}
}

func TestNewWithDB_WiresDeps(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewWithDB(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), testdb.Open(t))
	require.NoError(t, err)
	defer a.Close()

	d := a.Deps
	require.NotNil(t, d.Loader)
	require.NotNil(t, d.Sessions)
	require.NotNil(t, d.Mailer)

	names, err := d.Loader.ScanModules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cms"}, names)

	enabled, err := d.Enabled.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"proposals"}, enabled)
}

func TestSetup_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewWithDB(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), testdb.Open(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	require.NoError(t, a.Setup(ctx))
	require.NoError(t, a.Setup(ctx))

	u, err := auth.NewService(a.DB, cfg.BcryptCost).Login(ctx, AdminUsername, "admin123")
	require.NoError(t, err)
	assert.Equal(t, AdminUsername, u.Username)

	for _, sub := range []string{"cms", "logos"} {
		info, err := os.Stat(filepath.Join(cfg.UploadsDir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
