package config

import (
	"fmt"
	"strings"

	"github.com/scanforge/dmscan/internal/binarize"
)

// Config represents the complete configuration for the dmscan application.
// It covers all commands (image, pdf, encode, serve) and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Scanner configuration
	Scanner ScannerConfig `mapstructure:"scanner" yaml:"scanner" json:"scanner"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Encoder configuration (for the encode command)
	Encoder EncoderConfig `mapstructure:"encoder" yaml:"encoder" json:"encoder"`

	// Server configuration (for the serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// ScannerConfig contains scan pipeline settings.
type ScannerConfig struct {
	// Threshold is the binarization luminance cutoff, 0..255.
	Threshold int `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	// TryPure enables the cheap axis-aligned extraction before the full
	// region search.
	TryPure bool `mapstructure:"try_pure" yaml:"try_pure" json:"try_pure"`
	// TimeoutMS bounds the region search per image; 0 disables.
	TimeoutMS int `mapstructure:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// EncoderConfig contains symbol rendering settings.
type EncoderConfig struct {
	// Scale is pixels per module in rendered output.
	Scale int `mapstructure:"scale" yaml:"scale" json:"scale"`
	// QuietZone is the light border width in modules.
	QuietZone int `mapstructure:"quiet_zone" yaml:"quiet_zone" json:"quiet_zone"`
	// Shape restricts symbol geometry: auto, square or rectangle.
	Shape string `mapstructure:"shape" yaml:"shape" json:"shape"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Scanner: ScannerConfig{
			Threshold: int(binarize.DefaultThreshold),
			TryPure:   true,
			TimeoutMS: 0,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Encoder: EncoderConfig{
			Scale:     4,
			QuietZone: 2,
			Shape:     "auto",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

var validFormats = []string{"json", "text", "csv"}

var validShapes = []string{"auto", "square", "rectangle"}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level %q (valid: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Scanner.Threshold < 0 || c.Scanner.Threshold > 255 {
		return fmt.Errorf("scanner.threshold must be in 0..255, got %d", c.Scanner.Threshold)
	}
	if c.Scanner.TimeoutMS < 0 {
		return fmt.Errorf("scanner.timeout_ms must not be negative, got %d", c.Scanner.TimeoutMS)
	}
	if !contains(validFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("invalid output.format %q (valid: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Encoder.Scale < 1 {
		return fmt.Errorf("encoder.scale must be at least 1, got %d", c.Encoder.Scale)
	}
	if c.Encoder.QuietZone < 0 {
		return fmt.Errorf("encoder.quiet_zone must not be negative, got %d", c.Encoder.QuietZone)
	}
	if !contains(validShapes, strings.ToLower(c.Encoder.Shape)) {
		return fmt.Errorf("invalid encoder.shape %q (valid: %s)", c.Encoder.Shape, strings.Join(validShapes, ", "))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
