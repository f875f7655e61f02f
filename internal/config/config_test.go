package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "sandbox", cfg.StraddleEnv)
	assert.Equal(t, "http://localhost:5173", cfg.CORSOrigin)
	assert.Equal(t, 30*time.Second, cfg.SSEHeartbeat)
	assert.Equal(t, 64, cfg.PushBuffer)
	assert.False(t, cfg.EnableLogStream)
	assert.Equal(t, ":3001", cfg.Addr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("STRADDLE_API_KEY", "sk_test")
	t.Setenv("STRADDLE_ENV", "production")
	t.Setenv("ENABLE_LOG_STREAM", "true")
	t.Setenv("SSE_HEARTBEAT", "5s")
	t.Setenv("NODE_ENV", "test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "sk_test", cfg.StraddleAPIKey)
	assert.Equal(t, "production", cfg.StraddleEnv)
	assert.True(t, cfg.EnableLogStream)
	assert.Equal(t, 5*time.Second, cfg.SSEHeartbeat)
	assert.Equal(t, "test", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 5000\ncors_origin: https://demo.example\n"), 0o600))
	t.Setenv("PORT", "6000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "https://demo.example", cfg.CORSOrigin)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("STRADDLE_ENV", "staging")
	_, err := Load("")
	assert.ErrorContains(t, err, "STRADDLE_ENV")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: 3001, StraddleEnv: "sandbox", SSEHeartbeat: time.Second, PushBuffer: 1}
	assert.ErrorContains(t, cfg.Validate(), "PUSH_BUFFER")

	cfg.PushBuffer = 2
	cfg.SSEHeartbeat = 0
	assert.ErrorContains(t, cfg.Validate(), "SSE_HEARTBEAT")

	cfg.SSEHeartbeat = time.Second
	assert.NoError(t, cfg.Validate())
}
