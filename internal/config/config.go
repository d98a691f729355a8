// Package config holds runtime configuration for the boomerang web service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config represents the web service configuration
type Config struct {
	// Server settings
	Host string `json:"host"`
	Port int    `json:"port"`

	// Directories
	UploadDir string `json:"upload_dir"`
	OutputDir string `json:"output_dir"`
	StaticDir string `json:"static_dir"`

	// Upload limits
	MaxUploadMB int64 `json:"max_upload_mb"`

	// External engine binaries
	FFmpegPath  string `json:"ffmpeg_path"`
	FFprobePath string `json:"ffprobe_path"`

	// Stale file sweep
	SweepInterval time.Duration `json:"sweep_interval"`
	SweepMaxAge   time.Duration `json:"sweep_max_age"`

	// Debug & logging
	Verbose bool `json:"verbose"`
}

// Default returns a configuration with all default values set
func Default() *Config {
	return &Config{
		Host:          "0.0.0.0",
		Port:          3000,
		UploadDir:     "./uploads",
		OutputDir:     "./output",
		StaticDir:     "./web/static",
		MaxUploadMB:   500,
		FFmpegPath:    "ffmpeg",
		FFprobePath:   "ffprobe",
		SweepInterval: 30 * time.Minute,
		SweepMaxAge:   time.Hour,
	}
}

// Load builds the configuration from defaults overridden by environment
// variables.
func Load() *Config {
	cfg := Default()

	if v := os.Getenv("BOOMERANG_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("BOOMERANG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("BOOMERANG_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("BOOMERANG_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("BOOMERANG_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("BOOMERANG_MAX_UPLOAD_MB"); v != "" {
		if mb, err := strconv.ParseInt(v, 10, 64); err == nil && mb > 0 {
			cfg.MaxUploadMB = mb
		}
	}
	if v := os.Getenv("BOOMERANG_FFMPEG"); v != "" {
		cfg.FFmpegPath = v
	}
	if v := os.Getenv("BOOMERANG_FFPROBE"); v != "" {
		cfg.FFprobePath = v
	}
	if v := os.Getenv("BOOMERANG_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	if v := os.Getenv("BOOMERANG_SWEEP_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepMaxAge = d
		}
	}
	if v := os.Getenv("BOOMERANG_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: "must be between 1 and 65535"}
	}
	if c.MaxUploadMB < 1 {
		return &ValidationError{Field: "max_upload_mb", Message: "must be at least 1"}
	}
	if c.SweepInterval <= 0 {
		return &ValidationError{Field: "sweep_interval", Message: "must be positive"}
	}
	if c.SweepMaxAge <= 0 {
		return &ValidationError{Field: "sweep_max_age", Message: "must be positive"}
	}
	return nil
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error in field '" + e.Field + "': " + e.Message
}
