// Package manifest reads the modkit.yaml file each mod directory carries.
//
// The struct mirrors the on-disk schema and is intentionally narrow so the
// host can validate mod metadata before constructing the mod itself.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file looked up inside every mod directory.
const FileName = "modkit.yaml"

// Manifest declares one mod's identity and load behavior.
type Manifest struct {
	Name        string `yaml:"name"`
	Author      string `yaml:"author,omitempty"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
	// IDPrefix overrides the derived prefix (name plus a dash).
	IDPrefix string `yaml:"id_prefix,omitempty"`
	// OptionalPatches opts into the host's fault-isolated auto patching.
	// Defaults to true when omitted.
	OptionalPatches *bool `yaml:"optional_patches,omitempty"`
	// SelfManagedPatches flags the mod as applying its own patches.
	SelfManagedPatches bool `yaml:"self_managed_patches,omitempty"`
	// ResourcesDir is read into the mod's resource map, relative to the
	// mod directory.
	ResourcesDir string `yaml:"resources,omitempty"`
	// HooksFile names the interpreted hook unit, relative to the mod
	// directory.
	HooksFile string `yaml:"hooks,omitempty"`
}

// File pairs a parsed manifest with its mod directory.
type File struct {
	Manifest Manifest
	Dir      string
}

// Normalized returns a trimmed copy of the manifest.
func (m Manifest) Normalized() Manifest {
	clone := Manifest{
		Name:               strings.TrimSpace(m.Name),
		Author:             strings.TrimSpace(m.Author),
		Version:            strings.TrimSpace(m.Version),
		Description:        strings.TrimSpace(m.Description),
		IDPrefix:           strings.TrimSpace(m.IDPrefix),
		OptionalPatches:    m.OptionalPatches,
		SelfManagedPatches: m.SelfManagedPatches,
		ResourcesDir:       strings.TrimSpace(m.ResourcesDir),
		HooksFile:          strings.TrimSpace(m.HooksFile),
	}
	return clone
}

// Validate ensures the manifest is well-formed.
func (m Manifest) Validate() error {
	normalized := m.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("manifest: name is required")
	}
	if normalized.Version == "" {
		return fmt.Errorf("manifest %s: version is required", normalized.Name)
	}
	if strings.ContainsAny(normalized.Name, string(os.PathSeparator)) {
		return fmt.Errorf("manifest: name %s contains a path separator", normalized.Name)
	}
	return nil
}

// WantsOptionalPatches resolves the opt-in flag, defaulting to true.
func (m Manifest) WantsOptionalPatches() bool {
	if m.OptionalPatches == nil {
		return true
	}
	return *m.OptionalPatches
}

// CanonicalName is the settings-file key for the mod: the lowercased name
// with spaces removed, mirroring the code-unit naming of older releases.
func (m Manifest) CanonicalName() string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(m.Name), " ", ""))
}

// Parse decodes and validates one manifest payload.
func Parse(data []byte) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, fmt.Errorf("manifest: payload is empty")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m.Normalized(), nil
}

// LoadDir reads the manifest inside one mod directory.
func LoadDir(dir string) (File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return File{Manifest: m, Dir: filepath.Clean(dir)}, nil
}

// Scan walks modsDir for subdirectories carrying a manifest and returns
// them sorted by path. A missing mods directory means "no mods".
func Scan(modsDir string) ([]File, error) {
	trimmed := strings.TrimSpace(modsDir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("manifest: read %s: %w", trimmed, err)
	}
	var files []File
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(trimmed, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, FileName)); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		file, err := LoadDir(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Dir < files[j].Dir })
	return files, nil
}
