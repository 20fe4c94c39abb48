package module

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound is returned when a module directory has no module.json.
var ErrConfigNotFound = errors.New("module config not found")

// ConfigParseError wraps a descriptor that exists but cannot be read or decoded.
type ConfigParseError struct {
	Module string
	Err    error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("module %s: parse config: %v", e.Module, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// RouteMountError reports a route function that panicked or failed while mounting.
type RouteMountError struct {
	Module  string
	Surface Surface
	Err     error
}

func (e *RouteMountError) Error() string {
	return fmt.Sprintf("module %s: mount %s routes: %v", e.Module, e.Surface, e.Err)
}

func (e *RouteMountError) Unwrap() error { return e.Err }
