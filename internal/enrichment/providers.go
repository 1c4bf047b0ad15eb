package enrichment

import (
	"fmt"

	"github.com/lehigh-university-libraries/omniscan/internal/config"
	"github.com/lehigh-university-libraries/omniscan/internal/gemini"
	"github.com/lehigh-university-libraries/omniscan/internal/ollama"
	"github.com/lehigh-university-libraries/omniscan/internal/openai"
	"github.com/lehigh-university-libraries/omniscan/internal/providers"
)

// NewProvider builds the configured LLM provider
func NewProvider(cfg config.Config) (providers.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey, gemini.WithResponseSchema(ResponseSchema())), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// NewClientFromConfig wires the configured provider into a Client
func NewClientFromConfig(cfg config.Config) (*Client, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(provider, cfg.Model, cfg.Temperature), nil
}
