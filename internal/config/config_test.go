package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
[store]
backend = "sqlite"
sqlite_path = "/tmp/flows.db"

[alignment]
covered_threshold = 0.6
stop_words = ["the", "please"]

[lock]
ttl = "45s"
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "sql", cfg.Store.CanonicalBackend)
	assert.Equal(t, 0.6, cfg.Alignment.CoveredThreshold)
	assert.Equal(t, 0.35, cfg.Alignment.Floor)
	assert.Equal(t, []string{"the", "please"}, cfg.Alignment.StopWords)
	assert.Equal(t, 45*time.Second, cfg.Lock.TTL.Duration)
	assert.Equal(t, 30*time.Second, cfg.Lock.Wait.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/flows")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "postgres://localhost/flows", cfg.Store.PostgresDSN)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.True(t, cfg.Observability.Tracing)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Store.Backend = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Alignment.CoveredThreshold = 0.3
	assert.Error(t, cfg.Validate(), "covered threshold must exceed the floor")

	cfg = Default()
	cfg.Store.Backend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "postgres_dsn")

	cfg = Default()
	cfg.Lock.Backend = "redis"
	assert.ErrorContains(t, cfg.Validate(), "redis_addr")
}
