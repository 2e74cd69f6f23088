// Package config loads saltview configuration from YAML files and
// provides defaults. CLI flags override file settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// APIConfig holds the Salt REST API connection settings.
type APIConfig struct {
	// URL of the salt-api web server, e.g. https://salt-master:8000
	URL string `yaml:"url"`

	// Username for external authentication
	Username string `yaml:"username"`

	// Password for external authentication
	Password string `yaml:"password"`

	// EAuth is the external authentication backend (pam, ldap, ...)
	EAuth string `yaml:"eauth"`

	// TrustHost skips TLS certificate verification when true
	TrustHost bool `yaml:"trust_host"`

	// Timeout for API requests
	Timeout time.Duration `yaml:"timeout"`
}

// DisplayConfig holds the report rendering settings.
type DisplayConfig struct {
	// MaxBarSize is the plot width equivalent to 100% of elapsed time
	MaxBarSize int `yaml:"max_bar_size"`

	// TimeUnit for duration columns and footers: ms or s. Empty picks
	// the per-report default (ms for state, s for orchestration).
	TimeUnit string `yaml:"time_unit"`

	// Glyphs selects the border palette: rich, safe, or auto
	Glyphs string `yaml:"glyphs"`

	// Colorize enables ANSI colors on the Result column
	Colorize bool `yaml:"colorize"`
}

// Config is the root saltview configuration.
type Config struct {
	API APIConfig `yaml:"api"`

	Display DisplayConfig `yaml:"display"`

	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			EAuth:   "pam",
			Timeout: 60 * time.Second,
		},
		Display: DisplayConfig{
			MaxBarSize: 30,
			Glyphs:     "auto",
			Colorize:   true,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML configuration file over the defaults. A missing file
// is not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
