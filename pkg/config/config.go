// Package config handles loading and saving devsetup configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/devsetup/config.yaml
//   - Data:    ~/.local/share/devsetup/ (progress store)
//   - State:   ~/.local/state/devsetup/ (debug log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "devsetup"

// Theme names accepted by ui.theme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Storage backends accepted by storage.backend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	Theme        string `yaml:"theme,omitempty"`         // dark, light
	SidebarWidth int    `yaml:"sidebar_width,omitempty"` // Step list width in columns
}

// StorageConfig selects where step progress is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend,omitempty"` // json, sqlite, memory
	Path    string `yaml:"path,omitempty"`    // Empty means DataDir()/progress.{json,db}
}

// CatalogConfig points at an optional guide directory replacing the built-in one.
type CatalogConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch,omitempty"`
}

// Config is the top-level configuration for devsetup.
type Config struct {
	UI      UIConfig      `yaml:"ui,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Catalog CatalogConfig `yaml:"catalog,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Theme:        ThemeDark,
			SidebarWidth: 34,
		},
		Storage: StorageConfig{
			Backend: BackendJSON,
		},
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// ConfigDir returns the XDG config directory for devsetup.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// DataDir returns the XDG data directory for devsetup.
func DataDir() string { return xdgDir("XDG_DATA_HOME", ".local", "share") }

// StateDir returns the XDG state directory for devsetup.
func StateDir() string { return xdgDir("XDG_STATE_HOME", ".local", "state") }

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Catalog.Path = expandHome(cfg.Catalog.Path)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch c.UI.Theme {
	case "", ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("invalid ui.theme %q (want %s or %s)", c.UI.Theme, ThemeDark, ThemeLight)
	}
	switch c.Storage.Backend {
	case "", BackendJSON, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid storage.backend %q (want %s, %s or %s)",
			c.Storage.Backend, BackendJSON, BackendSQLite, BackendMemory)
	}
	if c.UI.SidebarWidth < 0 {
		return fmt.Errorf("invalid ui.sidebar_width %d", c.UI.SidebarWidth)
	}
	return nil
}

// ApplyEnv overlays DEVSETUP_STORE and DEVSETUP_CATALOG onto cfg.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("DEVSETUP_STORE")); v != "" {
		c.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("DEVSETUP_CATALOG")); v != "" {
		c.Catalog.Path = expandHome(v)
	}
}

// StoragePath returns the configured progress store path, or the default
// file for the backend inside DataDir.
func (c Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	dir := DataDir()
	if dir == "" {
		return ""
	}
	name := "progress.json"
	if c.Storage.Backend == BackendSQLite {
		name = "progress.db"
	}
	return filepath.Join(dir, name)
}

// IsLight reports whether the light theme is selected.
func (c Config) IsLight() bool {
	return c.UI.Theme == ThemeLight
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
