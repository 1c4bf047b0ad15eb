package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "OMNISCAN"

// Config holds every setting for the scanner service
type Config struct {
	Provider     string  `mapstructure:"provider" yaml:"provider"`
	Model        string  `mapstructure:"model" yaml:"model"`
	Temperature  float64 `mapstructure:"temperature" yaml:"temperature"`
	GeminiAPIKey string  `mapstructure:"gemini_api_key" yaml:"-"`
	OpenAIAPIKey string  `mapstructure:"openai_api_key" yaml:"-"`
	OllamaURL    string  `mapstructure:"ollama_url" yaml:"ollama_url"`

	SampleInterval time.Duration `mapstructure:"sample_interval" yaml:"sample_interval"`
	Cooldown       time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
	FramesDir      string        `mapstructure:"frames_dir" yaml:"frames_dir"`
	Decoder        string        `mapstructure:"decoder" yaml:"decoder"`
	Cue            string        `mapstructure:"cue" yaml:"cue"`

	Port     string `mapstructure:"port" yaml:"port"`
	Export   string `mapstructure:"export" yaml:"export"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// New returns a viper instance with defaults and environment bindings
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "")
	v.SetDefault("temperature", 0.2)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("ollama_url", "")
	v.SetDefault("sample_interval", 500*time.Millisecond)
	v.SetDefault("cooldown", 2*time.Second)
	v.SetDefault("frames_dir", "")
	v.SetDefault("decoder", "zxing")
	v.SetDefault("cue", "bell")
	v.SetDefault("port", "8888")
	v.SetDefault("export", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// provider credentials keep their conventional names
	_ = v.BindEnv("gemini_api_key", envPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("openai_api_key", envPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("ollama_url", envPrefix+"_OLLAMA_URL", "OLLAMA_URL", "OLLAMA_HOST")

	return v
}

// Load reads an optional YAML config file and decodes the merged settings
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		slog.Debug("Loaded config file", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	switch c.Decoder {
	case "zxing", "none":
	default:
		return fmt.Errorf("unsupported decoder: %s (supported: zxing, none)", c.Decoder)
	}
	switch c.Cue {
	case "bell", "silent":
	default:
		return fmt.Errorf("unsupported cue: %s (supported: bell, silent)", c.Cue)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be positive, got %s", c.SampleInterval)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %s", c.Cooldown)
	}
	return nil
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

// SlogLevel maps the configured log level onto slog
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
