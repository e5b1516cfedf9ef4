package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LANGPACK_DIR", "/srv/langs")
	t.Setenv("LANGPACK_EXT", "strings")
	t.Setenv("WORKER_COUNT", "3")
	t.Setenv("LANGPACK_PLACEHOLDERS", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "/srv/langs", cfg.LangDir)
	assert.Equal(t, "strings", cfg.LangExt)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.True(t, cfg.Placeholders)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFallbacks(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	t.Setenv("LANGPACK_PLACEHOLDERS", "maybe")
	t.Setenv("LANGPACK_EXT", "")

	cfg := Load()
	assert.Equal(t, ".lang", cfg.LangExt)
	assert.GreaterOrEqual(t, cfg.WorkerCount, 1)
	assert.False(t, cfg.Placeholders)
}
