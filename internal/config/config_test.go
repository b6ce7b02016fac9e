package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 20, cfg.ListLimit)
	assert.Equal(t, "https://pokeapi.co/api/v2", cfg.APIBaseURL)
}

func TestLoadPartialFile(t *testing.T) {
	dir := t.TempDir()
	content := "list_limit: 151\nhttp_timeout: 5s\nsprites: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 151, cfg.ListLimit)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.Sprites)
	assert.Equal(t, "Pokédex", cfg.DeckName, "unset keys keep defaults")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("list_limit: [oops"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("list_limit: 0\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "list_limit")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	cfg.ListLimit = 42
	cfg.HTTPTimeout = 1500 * time.Millisecond

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyOverrides(t *testing.T) {
	v := viper.New()
	v.Set("api_base_url", "http://localhost:9999/api/v2")
	v.Set("list_limit", 5)
	v.Set("http_timeout", "2s")
	v.Set("log_level", "debug")

	cfg := Default()
	require.NoError(t, cfg.ApplyOverrides(v))
	assert.Equal(t, "http://localhost:9999/api/v2", cfg.APIBaseURL)
	assert.Equal(t, 5, cfg.ListLimit)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Sprites, "unset keys are untouched")
}

func TestApplyOverridesFromEnv(t *testing.T) {
	t.Setenv("POKEDEX_LIST_LIMIT", "3")

	v := viper.New()
	v.SetEnvPrefix("POKEDEX")
	v.AutomaticEnv()

	cfg := Default()
	require.NoError(t, cfg.ApplyOverrides(v))
	assert.Equal(t, 3, cfg.ListLimit)
}

func TestApplyOverridesValidates(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "loud")

	assert.Error(t, Default().ApplyOverrides(v))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }},
		{"zero limit", func(c *Config) { c.ListLimit = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLogPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/tmp/x", "pokedex.log"), cfg.LogPath("/tmp/x"))

	cfg.LogFile = "/var/log/pokedex.log"
	assert.Equal(t, "/var/log/pokedex.log", cfg.LogPath("/tmp/x"))
}
