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

// TestDefaults verifies the configuration works without a config file
func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "models", cfg.Models.Dir)
	assert.Equal(t, "gfpgan.onnx", cfg.Models.FaceModel)
	assert.Equal(t, "auto", cfg.Models.Device)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

// TestYAMLOverride verifies file values take precedence over defaults
func TestYAMLOverride(t *testing.T) {
	yaml := []byte(`
server:
  port: "9000"
  mode: debug
models:
  dir: /opt/weights
  device: cuda
upload:
  max_size_mb: 8
`)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "/opt/weights", cfg.Models.Dir)
	assert.Equal(t, "cuda", cfg.Models.Device)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes())

	// Untouched keys keep their defaults
	assert.Equal(t, "u2net.onnx", cfg.Models.MattingModel)
}

// TestLoadConfigMissingFile verifies a missing file is not an error
func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	v, err := LoadConfig()
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

// TestGetEnv verifies the environment fallback helper
func TestGetEnv(t *testing.T) {
	t.Setenv("ENHANCER_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnv("ENHANCER_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("ENHANCER_TEST_MISSING", "fallback"))
}
