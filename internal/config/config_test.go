package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 500*time.Millisecond, cfg.SampleInterval)
	assert.Equal(t, 2*time.Second, cfg.Cooldown)
	assert.Equal(t, "zxing", cfg.Decoder)
	assert.Equal(t, "8888", cfg.Port)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("OMNISCAN_COOLDOWN", "5s")
	t.Setenv("OMNISCAN_PROVIDER", "ollama")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, 5*time.Second, cfg.Cooldown)
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "mistral-small3.2:24b", cfg.Model)
	assert.Equal(t, "http://ollama:11434", cfg.OllamaURL)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omniscan.yaml")
	content := "provider: openai\nmodel: gpt-4o-mini\nsample_interval: 250ms\nframes_dir: /tmp/frames\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 250*time.Millisecond, cfg.SampleInterval)
	assert.Equal(t, "/tmp/frames", cfg.FramesDir)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Provider:       "gemini",
		Decoder:        "zxing",
		Cue:            "bell",
		SampleInterval: time.Second,
		Cooldown:       time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "bard" }},
		{"unknown decoder", func(c *Config) { c.Decoder = "zbar" }},
		{"unknown cue", func(c *Config) { c.Cue = "trumpet" }},
		{"zero interval", func(c *Config) { c.SampleInterval = 0 }},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: ""}.SlogLevel())
}
