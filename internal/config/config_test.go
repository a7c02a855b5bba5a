package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 127, cfg.Scanner.Threshold)
	assert.True(t, cfg.Scanner.TryPure)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Encoder.Scale)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log_level"},
		{"threshold too high", func(c *Config) { c.Scanner.Threshold = 256 }, "scanner.threshold"},
		{"threshold negative", func(c *Config) { c.Scanner.Threshold = -1 }, "scanner.threshold"},
		{"negative timeout", func(c *Config) { c.Scanner.TimeoutMS = -5 }, "scanner.timeout_ms"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "invalid output.format"},
		{"zero scale", func(c *Config) { c.Encoder.Scale = 0 }, "encoder.scale"},
		{"negative quiet zone", func(c *Config) { c.Encoder.QuietZone = -1 }, "encoder.quiet_zone"},
		{"bad shape", func(c *Config) { c.Encoder.Shape = "round" }, "invalid encoder.shape"},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }, "server.max_upload_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "DEBUG"
	cfg.Output.Format = "JSON"
	cfg.Encoder.Shape = "Square"
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("DMSCAN_LOG_LEVEL", "debug")
	t.Setenv("DMSCAN_SCANNER_THRESHOLD", "100")
	t.Setenv("DMSCAN_SERVER_PORT", "9999")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 100, cfg.Scanner.Threshold)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadWithFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: warn
scanner:
  threshold: 64
  try_pure: false
encoder:
  shape: rectangle
`), 0o600))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 64, cfg.Scanner.Threshold)
	assert.False(t, cfg.Scanner.TryPure)
	assert.Equal(t, "rectangle", cfg.Encoder.Shape)
	// Untouched sections keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadWithFileMissing(t *testing.T) {
	viper.Reset()
	_, err := NewLoader().LoadWithFile("/nonexistent/dmscan.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadValidationFailure(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, err := NewLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadWithoutValidation(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("DMSCAN_LOG_LEVEL", "loud")

	cfg, err := NewLoader().LoadWithoutValidation()
	require.NoError(t, err)
	assert.Equal(t, "loud", cfg.LogLevel)
	assert.Error(t, cfg.Validate())
}

func TestDumpYAML(t *testing.T) {
	cfg := DefaultConfig()
	out, err := cfg.DumpYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: info")
	assert.Contains(t, out, "threshold: 127")
	assert.Contains(t, out, "port: 8080")
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/etc/dmscan")
}
