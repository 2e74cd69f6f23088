package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "pam", cfg.API.EAuth)
	assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	assert.Equal(t, 30, cfg.Display.MaxBarSize)
	assert.Equal(t, "auto", cfg.Display.Glyphs)
	assert.True(t, cfg.Display.Colorize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file settings override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "saltview.yaml")
		content := `
api:
  url: https://salt-master:8000
  username: viewer
  eauth: ldap
display:
  max_bar_size: 50
  glyphs: safe
  colorize: false
log_level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://salt-master:8000", cfg.API.URL)
		assert.Equal(t, "viewer", cfg.API.Username)
		assert.Equal(t, "ldap", cfg.API.EAuth)
		assert.Equal(t, 50, cfg.Display.MaxBarSize)
		assert.Equal(t, "safe", cfg.Display.Glyphs)
		assert.False(t, cfg.Display.Colorize)
		assert.Equal(t, "debug", cfg.LogLevel)
		// untouched keys keep their defaults
		assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api: [oops"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
