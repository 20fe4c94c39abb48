package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	entity "bizdash/model/entity"
)

const (
	ModulesCategory   = "modules"
	EnabledModulesKey = "enabled_modules"

	// DefaultModule is the enabled set when nothing (or something malformed) is stored.
	DefaultModule = "proposals"
)

// ProtectedModules can never be removed from the enabled set.
var ProtectedModules = []string{"proposals", "dashboard"}

// ErrProtectedModule is returned when disabling a protected module.
var ErrProtectedModule = errors.New("module is protected and cannot be disabled")

// ErrReservedSetting is returned when a generic settings write targets the enabled set.
var ErrReservedSetting = errors.New("modules/enabled_modules is only changed by enabling or disabling modules")

// IsReserved reports whether category/key may only be written through EnabledModules.
func IsReserved(category, key string) bool {
	return category == ModulesCategory && key == EnabledModulesKey
}

// IsProtected reports whether name is a protected module.
func IsProtected(name string) bool {
	for _, p := range ProtectedModules {
		if p == name {
			return true
		}
	}
	return false
}

// EnabledModules is the ordered set of enabled module names, persisted as one json
// setting (modules/enabled_modules). Reads always bypass the settings cache.
// Enable and Disable are serialized so concurrent toggles in this process cannot lose updates.
type EnabledModules struct {
	store *Store
	mu    sync.Mutex
}

func NewEnabledModules(store *Store) *EnabledModules {
	return &EnabledModules{store: store}
}

// List returns the enabled module names. Missing or non-array values yield [DefaultModule].
func (e *EnabledModules) List(ctx context.Context) ([]string, error) {
	v, err := e.store.GetFresh(ctx, ModulesCategory, EnabledModulesKey, nil)
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func normalize(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return []string{DefaultModule}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// IsEnabled reports whether name is in the enabled set.
func (e *EnabledModules) IsEnabled(ctx context.Context, name string) (bool, error) {
	names, err := e.List(ctx)
	if err != nil {
		return false, err
	}
	return contains(names, name), nil
}

// Enable appends name to the set if missing and returns the resulting set.
func (e *EnabledModules) Enable(ctx context.Context, name string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	names, err := e.List(ctx)
	if err != nil {
		return nil, err
	}
	if contains(names, name) {
		return names, nil
	}
	names = append(names, name)
	if err := e.store.Set(ctx, ModulesCategory, EnabledModulesKey, names, entity.SettingTypeJSON); err != nil {
		return nil, err
	}
	return names, nil
}

// Disable removes name from the set and returns the resulting set.
// Protected modules fail with ErrProtectedModule.
func (e *EnabledModules) Disable(ctx context.Context, name string) ([]string, error) {
	if IsProtected(name) {
		return nil, fmt.Errorf("disable %s: %w", name, ErrProtectedModule)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	names, err := e.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			filtered = append(filtered, n)
		}
	}
	if err := e.store.Set(ctx, ModulesCategory, EnabledModulesKey, filtered, entity.SettingTypeJSON); err != nil {
		return nil, err
	}
	return filtered, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
