// Package settings persists each mod's named settings as one JSON object
// per mod. Older releases keyed the file by the mod's display name; the
// resolver prefers that file when it already exists so upgrades keep the
// player's values.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Setting is one name-keyed value owned by exactly one mod.
type Setting struct {
	Name  string
	Value any
}

// Blob is the structured settings document as read from or written to disk.
// Hooks receive it by reference and may mutate it in place.
type Blob map[string]any

// Hook inspects or mutates a blob immediately before save or after load.
type Hook func(Blob)

// Store resolves paths and round-trips blobs for one settings directory.
type Store struct {
	dir        string
	beforeSave []Hook
	afterLoad  []Hook
}

// NewStore roots a store at dir, creating it on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// OnBeforeSave registers a hook that runs immediately before every save.
func (s *Store) OnBeforeSave(h Hook) {
	if h != nil {
		s.beforeSave = append(s.beforeSave, h)
	}
}

// OnAfterLoad registers a hook that runs immediately after every load.
func (s *Store) OnAfterLoad(h Hook) {
	if h != nil {
		s.afterLoad = append(s.afterLoad, h)
	}
}

// Resolve picks the settings path for a mod: the legacy display-name file
// when it exists, otherwise the canonical-name file whether or not that
// file exists yet.
func (s *Store) Resolve(displayName, canonicalName string) string {
	legacy := filepath.Join(s.dir, displayName+".json")
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return filepath.Join(s.dir, canonicalName+".json")
}

// Load reads the blob at path and runs the after-load hooks on it. A
// missing file yields an empty blob, not an error: a mod's first run has
// no settings yet.
func (s *Store) Load(path string) (Blob, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		blob := Blob{}
		s.runAfterLoad(blob)
		return blob, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	blob := Blob{}
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("settings: decode %s: %w", path, err)
	}
	s.runAfterLoad(blob)
	return blob, nil
}

// Save runs the before-save hooks on the blob and writes it to path.
func (s *Store) Save(path string, blob Blob) error {
	if blob == nil {
		blob = Blob{}
	}
	for _, h := range s.beforeSave {
		h(blob)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("settings: ensure dir: %w", err)
	}
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", path, err)
	}
	return nil
}

func (s *Store) runAfterLoad(blob Blob) {
	for _, h := range s.afterLoad {
		h(blob)
	}
}
