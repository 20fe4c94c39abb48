package module

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// DescriptorFile is the per-module descriptor name inside a module directory.
const DescriptorFile = "module.json"

// Source discovers modules and loads their raw descriptors.
type Source interface {
	ListModules() ([]string, error)
	LoadDescriptor(name string) (map[string]interface{}, error)
}

// DirSource treats every top-level directory of FS as a module.
type DirSource struct {
	FS fs.FS
}

// NewDirSource returns a DirSource over fsys, usually os.DirFS(modulesDir).
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{FS: fsys}
}

func (s *DirSource) ListModules() ([]string, error) {
	entries, err := fs.ReadDir(s.FS, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list modules: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *DirSource) LoadDescriptor(name string) (map[string]interface{}, error) {
	data, err := fs.ReadFile(s.FS, path.Join(name, DescriptorFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", name, DescriptorFile, ErrConfigNotFound)
		}
		return nil, &ConfigParseError{Module: name, Err: err}
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigParseError{Module: name, Err: err}
	}
	return raw, nil
}

// MapSource serves descriptors from memory. A nil descriptor means the module
// directory exists but has no module.json.
type MapSource map[string]map[string]interface{}

func (s MapSource) ListModules() ([]string, error) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s MapSource) LoadDescriptor(name string) (map[string]interface{}, error) {
	raw, ok := s[name]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrConfigNotFound)
	}
	return raw, nil
}
