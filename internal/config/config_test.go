package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/goanistream/internal/constants"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.json"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, constants.ProviderVidsrc, cfg.DefaultProvider)
	assert.Equal(t, constants.DefaultCacheSize, cfg.CacheSize)
	assert.Empty(t, cfg.TMDBAPIKey)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"PORT":"7000","TMDB_API_KEY":"from-file"}`), 0600))

	t.Setenv("CONFIG_FILE", file)
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "from-file", cfg.TMDBAPIKey)
}

func TestLoadCacheEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.json"))
	t.Setenv("CACHE_SIZE", "123")
	t.Setenv("CACHE_TTL_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.CacheSize)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
}

func TestLoadCacheEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.json"))
	t.Setenv("CACHE_SIZE", "lots")
	t.Setenv("CACHE_TTL_HOURS", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, time.Duration(constants.DefaultCacheTTL)*time.Hour, cfg.CacheTTL)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{broken`), 0600))
	t.Setenv("CONFIG_FILE", file)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateProvider(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.json"))
	t.Setenv("DEFAULT_PROVIDER", "nonsense")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DEFAULT_PROVIDER", constants.ProviderVideasy)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, constants.ProviderVideasy, cfg.DefaultProvider)
}
