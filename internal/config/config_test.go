package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
models:
  primary:
    base_url: "http://localhost:11434"
    model: "llama3.2"
`

func TestLoadConfigAppliesModelDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	p := cfg.Models.Primary
	assert.Equal(t, "chat", p.Style)
	assert.Equal(t, 4096, p.ContextLength)
	assert.Equal(t, 512, p.MaxTokens)
	assert.InDelta(t, 0.7, p.Temperature, 1e-9)
	assert.Equal(t, 3, p.RetryAttempts)
	assert.Equal(t, 45*time.Second, p.RequestTimeout)
	assert.Equal(t, 10, p.HistoryLimit)
	assert.False(t, p.MemoryOptimization)

	assert.Nil(t, cfg.Models.Fallback)
	assert.Equal(t, "file", cfg.Reminders.Storage.Type)
	assert.Equal(t, time.Second, cfg.Reminders.CheckInterval)
}

func TestLoadConfigFallbackSlot(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
models:
  primary:
    base_url: "http://localhost:11434"
    model: "llama3.2"
  fallback:
    base_url: "http://localhost:11434"
    model: "tinyllama"
    style: "completion"
    memory_optimization: true
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Models.Fallback)
	assert.Equal(t, "tinyllama", cfg.Models.Fallback.Model)
	assert.Equal(t, "completion", cfg.Models.Fallback.Style)
	assert.True(t, cfg.Models.Fallback.MemoryOptimization)
	assert.Equal(t, 3, cfg.Models.Fallback.RetryAttempts, "defaults apply to the fallback slot too")
}

func TestLoadConfigRequiresPrimaryModel(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
models:
  primary:
    base_url: "http://localhost:11434"
`))
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownStyle(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
models:
  primary:
    base_url: "http://localhost:11434"
    model: "llama3.2"
    style: "grpc"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported payload style")
}

func TestLoadConfigRejectsUnknownStorageType(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
reminders:
  storage:
    type: "etcd"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported reminder storage type")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
