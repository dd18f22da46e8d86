package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/booknav/internal/nav"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: BOOKNAV_SERVER__PORT sets server.port.
const EnvPrefix = "BOOKNAV_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BOOKNAV_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Lists from the file replace the defaults rather than merging into them.
	if k.Exists("include") {
		cfg.Include = nil
	}
	if k.Exists("exclude") {
		cfg.Exclude = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps BOOKNAV_SIDEBAR__ALIAS_LANDING to sidebar.alias_landing.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validBackends is the set of recognized session backends.
var validBackends = map[SessionBackend]bool{
	SessionMemory: true,
	SessionSQLite: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.TOC == "" {
		return fmt.Errorf("toc is required")
	}

	if _, err := nav.ParseFormat(c.TOCFormat); err != nil {
		return fmt.Errorf("invalid toc_format %q: must be one of auto, html, summary, yaml, dir", c.TOCFormat)
	}

	if c.BookDir == "" {
		return fmt.Errorf("book_dir is required")
	}

	if c.Sidebar.StorageKey == "" {
		return fmt.Errorf("sidebar.storage_key is required")
	}

	if c.Sidebar.ContainerID == "" {
		return fmt.Errorf("sidebar.container_id is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if !validBackends[c.Session.Backend] {
		return fmt.Errorf("invalid session.backend %q: must be one of memory, sqlite", c.Session.Backend)
	}

	if c.Session.Backend == SessionSQLite && c.Session.DataDir == "" {
		return fmt.Errorf("session.data_dir is required for the sqlite backend")
	}

	if c.Session.Cookie == "" {
		return fmt.Errorf("session.cookie is required")
	}

	return nil
}

// LoadOptions returns the tree loading options described by the config.
func (c *Config) LoadOptions() nav.LoadOptions {
	format, _ := nav.ParseFormat(c.TOCFormat)
	return nav.LoadOptions{
		Format:  format,
		Include: c.Include,
		Exclude: c.Exclude,
	}
}
