package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOLIODASH_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.EmbeddedAPI)
	assert.Empty(t, cfg.RefreshCron)
	assert.Equal(t, int64(42), cfg.FixtureSeed)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FOLIODASH_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EMBEDDED_API", "false")
	t.Setenv("API_BASE_URL", "http://data.internal:3000")
	t.Setenv("REFRESH_CRON", "*/15 * * * *")
	t.Setenv("FIXTURE_SEED", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.EmbeddedAPI)
	assert.Equal(t, "http://data.internal:3000", cfg.APIBaseURL)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	assert.Equal(t, int64(7), cfg.FixtureSeed)
}

func TestLoadInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("FOLIODASH_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "not-a-number")
	t.Setenv("DEV_MODE", "maybe")
	t.Setenv("FIXTURE_SEED", "garbage")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, int64(42), cfg.FixtureSeed)
}

func TestValidateRejectsExternalAPIWithoutBaseURL(t *testing.T) {
	cfg := &Config{Port: 8080, EmbeddedAPI: false, APIBaseURL: ""}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{Port: 0, EmbeddedAPI: true}
	assert.Error(t, cfg.Validate())
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/foliodash"}
	assert.Equal(t, "/var/lib/foliodash/fixture.db", cfg.FixtureDBPath())
	assert.Equal(t, "/var/lib/foliodash/snapshot.msgpack", cfg.SnapshotPath())
}
