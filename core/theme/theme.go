package theme

import (
	"context"
	"log/slog"
	"strconv"

	"bizdash/core/settings"
	entity "bizdash/model/entity"
)

const (
	Default = "default"
	Modern  = "modern"

	settingsCategory = "general"
	settingKey       = "use_modern_theme"
)

// Active returns the public theme name. Read errors fall back to Default.
func Active(ctx context.Context, s *settings.Store) string {
	modern, err := s.GetBool(ctx, settingsCategory, settingKey, false)
	if err != nil {
		slog.Warn("theme setting read failed", "error", err)
		return Default
	}
	if modern {
		return Modern
	}
	return Default
}

// SetModern switches the public theme.
func SetModern(ctx context.Context, s *settings.Store, modern bool) error {
	return s.Set(ctx, settingsCategory, settingKey, strconv.FormatBool(modern), entity.SettingTypeString)
}
