package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Load when no preset has the requested name.
var ErrNotFound = errors.New("preset not found")

// Store keeps presets as <name>.json files in a single directory.
type Store struct {
	Dir string
}

// DefaultDir returns the per-user preset directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".algo-upscale", "presets")
	}
	return filepath.Join(home, ".algo-upscale", "presets")
}

// NewStore creates a store rooted at dir. An empty dir selects DefaultDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{Dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// Load reads the named preset. Returns ErrNotFound when absent.
func (s *Store) Load(name string) (*File, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read preset %s: %w", name, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", name, err)
	}
	return &f, nil
}

// Save writes the preset, creating the directory if needed, and returns the
// path of the written file.
func (s *Store) Save(name string, f *File) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create preset dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode preset %s: %w", name, err)
	}
	path := s.path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write preset %s: %w", name, err)
	}
	return path, nil
}

// List returns the sorted names of all stored presets. A missing directory
// yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preset dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named preset and reports whether it existed.
func (s *Store) Delete(name string) (bool, error) {
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("delete preset %s: %w", name, err)
	}
	return true, nil
}
