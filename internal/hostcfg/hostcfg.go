// Package hostcfg loads host-level knobs from MODKIT_* environment
// variables. Mod-specific configuration lives in each mod's manifest, not
// here.
package hostcfg

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Variant identifies the storefront build the host was shipped through.
// Patch failures against Steam-only dependencies are expected on the Epic
// build and get suppressed.
type Variant string

const (
	VariantSteam Variant = "steam"
	VariantEpic  Variant = "epic"
)

// Config holds the host process configuration.
type Config struct {
	// RootDir anchors logs and per-mod settings files.
	RootDir string `env:"MODKIT_ROOT" envDefault:"."`
	// ModsDir is scanned for mod directories carrying a modkit.yaml.
	ModsDir string `env:"MODKIT_MODS_DIR" envDefault:"mods"`
	// Variant selects the storefront build: steam or epic.
	Variant Variant `env:"MODKIT_VARIANT" envDefault:"steam"`
	// NoUI disables the terminal progress view.
	NoUI bool `env:"MODKIT_NO_UI" envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("hostcfg: parse env: %w", err)
	}
	cfg.Variant = Variant(strings.ToLower(strings.TrimSpace(string(cfg.Variant))))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	switch c.Variant {
	case VariantSteam, VariantEpic:
	default:
		return fmt.Errorf("hostcfg: unknown variant %q (want steam or epic)", c.Variant)
	}
	if strings.TrimSpace(c.RootDir) == "" {
		return fmt.Errorf("hostcfg: root dir is required")
	}
	if strings.TrimSpace(c.ModsDir) == "" {
		return fmt.Errorf("hostcfg: mods dir is required")
	}
	return nil
}
