package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pool.yaml")

	content := `
pool:
  size: 4
  max_size: 8
  queue_capacity: 256
  timeout: 5s
  stack_size: 0

metrics:
  enabled: true
  port: 9099
`
	require.NoError(t, writeFile(configPath, content))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.EqualValues(t, 4, cfg.Pool.Size)
	assert.EqualValues(t, 8, cfg.Pool.MaxSize)
	assert.Equal(t, 256, cfg.Pool.QueueCapacity)
	assert.Equal(t, 5*time.Second, cfg.Pool.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9099, cfg.Metrics.Port)
}

func TestLoadFileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/pool.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")
	require.NoError(t, writeFile(configPath, "pool:\n  size: [not, a, scalar\n"))

	cfg, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.EqualValues(t, 4, cfg.Pool.Size)
	assert.EqualValues(t, 8, cfg.Pool.MaxSize)
	assert.Equal(t, 1024, cfg.Pool.QueueCapacity)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
