package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, int64(500), cfg.MaxUploadMB)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "ffprobe", cfg.FFprobePath)
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	assert.Equal(t, time.Hour, cfg.SweepMaxAge)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOOMERANG_PORT", "8080")
	t.Setenv("BOOMERANG_UPLOAD_DIR", "/tmp/up")
	t.Setenv("BOOMERANG_MAX_UPLOAD_MB", "100")
	t.Setenv("BOOMERANG_SWEEP_MAX_AGE", "2h")
	t.Setenv("BOOMERANG_VERBOSE", "true")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/tmp/up", cfg.UploadDir)
	assert.Equal(t, int64(100), cfg.MaxUploadMB)
	assert.Equal(t, 2*time.Hour, cfg.SweepMaxAge)
	assert.True(t, cfg.Verbose)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("BOOMERANG_PORT", "not-a-number")
	t.Setenv("BOOMERANG_MAX_UPLOAD_MB", "-5")

	cfg := Load()
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, int64(500), cfg.MaxUploadMB)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")

	cfg = Default()
	cfg.MaxUploadMB = 0
	require.Error(t, cfg.Validate())
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(500*1024*1024), cfg.MaxUploadBytes())
}
