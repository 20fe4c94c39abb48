package module

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
)

const (
	DefaultMenuOrder = 99
	DefaultVersion   = "1.0.0"
	DefaultCategory  = "other"
)

// Config is a decoded module.json.
type Config struct {
	Name        string                 `mapstructure:"name" json:"name"`
	DisplayName string                 `mapstructure:"displayName" json:"displayName"`
	Version     string                 `mapstructure:"version" json:"version"`
	Core        bool                   `mapstructure:"core" json:"core"`
	Enabled     bool                   `mapstructure:"enabled" json:"enabled"`
	Description string                 `mapstructure:"description" json:"description"`
	Category    string                 `mapstructure:"category" json:"category"`
	MenuItems   []MenuItem             `mapstructure:"menuItems" json:"menuItems"`
	Extra       map[string]interface{} `mapstructure:",remain" json:"-"`
}

// MenuItem is one dashboard navigation entry. Unknown descriptor fields are kept in Extra;
// Module and Core are filled in from the owning module.
type MenuItem struct {
	Label  string                 `mapstructure:"label"`
	Path   string                 `mapstructure:"path"`
	Icon   string                 `mapstructure:"icon"`
	Order  int                    `mapstructure:"order"`
	Extra  map[string]interface{} `mapstructure:",remain"`
	Module string                 `mapstructure:"-"`
	Core   bool                   `mapstructure:"-"`
}

// MarshalJSON flattens Extra next to the named fields.
func (m MenuItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["label"] = m.Label
	out["path"] = m.Path
	if m.Icon != "" {
		out["icon"] = m.Icon
	}
	out["order"] = m.Order
	out["module"] = m.Module
	out["core"] = m.Core
	return json.Marshal(out)
}

// decodeConfig applies descriptor defaults: name falls back to the directory name, core to
// false, enabled to true unless explicitly false, and menu order to DefaultMenuOrder.
func decodeConfig(dir string, raw map[string]interface{}) (*Config, error) {
	cfg := &Config{Enabled: true}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = dir
	}
	for i := range cfg.MenuItems {
		if cfg.MenuItems[i].Order == 0 {
			cfg.MenuItems[i].Order = DefaultMenuOrder
		}
		cfg.MenuItems[i].Module = dir
		cfg.MenuItems[i].Core = cfg.Core
	}
	return cfg, nil
}

func (c *Config) displayName(dir string) string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return dir
}

func (c *Config) version() string {
	if c.Version != "" {
		return c.Version
	}
	return DefaultVersion
}

func (c *Config) category() string {
	if c.Category != "" {
		return c.Category
	}
	return DefaultCategory
}
