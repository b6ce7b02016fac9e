// Package config handles loading and saving user configuration for pokedex.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/f3rmion/pokedex/internal/pokeapi"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// Config holds all user configuration.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url" mapstructure:"api_base_url"`       // PokeAPI root
	ListLimit      int           `yaml:"list_limit" mapstructure:"list_limit"`           // Size of the initial list
	HTTPTimeout    time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`       // Per-request timeout, 0 disables
	MaxConcurrency int           `yaml:"max_concurrency" mapstructure:"max_concurrency"` // Batch fan-out cap, 0 = unlimited
	Sprites        bool          `yaml:"sprites" mapstructure:"sprites"`                 // Render sprite art
	DeckName       string        `yaml:"deck_name" mapstructure:"deck_name"`             // Anki export deck name
	LogFile        string        `yaml:"log_file,omitempty" mapstructure:"log_file"`     // Defaults to <config dir>/pokedex.log
	LogLevel       string        `yaml:"log_level" mapstructure:"log_level"`             // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:     pokeapi.DefaultBaseURL,
		ListLimit:      pokeapi.DefaultLimit,
		HTTPTimeout:    30 * time.Second,
		MaxConcurrency: 0,
		Sprites:        true,
		DeckName:       "Pokédex",
		LogLevel:       "info",
	}
}

// Load reads the config file from path on top of the defaults. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir loads FileName from dir.
func LoadDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Save writes the configuration to path.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ApplyOverrides copies any keys set in v (flags or POKEDEX_* env vars)
// over the file configuration.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	if v.IsSet("api_base_url") {
		c.APIBaseURL = v.GetString("api_base_url")
	}
	if v.IsSet("list_limit") {
		c.ListLimit = v.GetInt("list_limit")
	}
	if v.IsSet("http_timeout") {
		c.HTTPTimeout = v.GetDuration("http_timeout")
	}
	if v.IsSet("max_concurrency") {
		c.MaxConcurrency = v.GetInt("max_concurrency")
	}
	if v.IsSet("sprites") {
		c.Sprites = v.GetBool("sprites")
	}
	if v.IsSet("deck_name") {
		c.DeckName = v.GetString("deck_name")
	}
	if v.IsSet("log_file") {
		c.LogFile = v.GetString("log_file")
	}
	if v.IsSet("log_level") {
		c.LogLevel = v.GetString("log_level")
	}
	return c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.ListLimit <= 0 {
		return fmt.Errorf("list_limit must be positive, got %d", c.ListLimit)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative, got %s", c.HTTPTimeout)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// LogPath returns the log file location, defaulting into dir.
func (c *Config) LogPath(dir string) string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(dir, "pokedex.log")
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pokedex"), nil
}
