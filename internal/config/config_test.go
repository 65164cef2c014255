package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test defaults apply when the environment is empty
func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 50, cfg.API.PageSize)
	assert.Empty(t, cfg.State.Path)
	assert.Empty(t, cfg.Observability.MetricsAddr)
	assert.True(t, cfg.IsDevelopment())
}

// Test environment variables override defaults
func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BEZORGEN_API_BASE_URL", "https://api.example.com")
	t.Setenv("BEZORGEN_HTTP_TIMEOUT", "5s")
	t.Setenv("BEZORGEN_PAGE_SIZE", "25")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 25, cfg.API.PageSize)
	assert.False(t, cfg.IsDevelopment())
}

// Test malformed values fall back to defaults
func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BEZORGEN_HTTP_TIMEOUT", "soon")
	t.Setenv("BEZORGEN_PAGE_SIZE", "many")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 50, cfg.API.PageSize)
}

// Test an explicit state path is used verbatim
func TestStatePathExplicit(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "session.db")
	t.Setenv("BEZORGEN_STATE_PATH", custom)

	cfg := Load()
	path, err := cfg.StatePath()
	require.NoError(t, err)
	assert.Equal(t, custom, path)
}

// Test the fallback state path lands under the user config directory
func TestStatePathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Load()
	path, err := cfg.StatePath()
	require.NoError(t, err)
	assert.Equal(t, "state.db", filepath.Base(path))
	assert.Equal(t, "bezorgen", filepath.Base(filepath.Dir(path)))
}
