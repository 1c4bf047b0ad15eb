package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/omniscan/internal/providers"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	apiKey string
	schema *genai.Schema
}

// Option configures a Gemini provider
type Option func(*Gemini)

// WithResponseSchema constrains JSON responses to the given schema
func WithResponseSchema(schema *genai.Schema) Option {
	return func(g *Gemini) {
		g.schema = schema
	}
}

// New returns a new Gemini provider
func New(apiKey string, opts ...Option) *Gemini {
	g := &Gemini{apiKey: apiKey}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HasCredentials reports whether an API key was supplied
func (g *Gemini) HasCredentials() bool {
	return g.apiKey != ""
}

// ExtractText extracts text from the given prompt using Gemini
func (g *Gemini) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set: %w", providers.ErrMissingCredentials)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))
	if config.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(config.System)},
		}
	}
	if config.JSON {
		model.ResponseMIMEType = "application/json"
		if g.schema != nil {
			model.ResponseSchema = g.schema
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(config.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
