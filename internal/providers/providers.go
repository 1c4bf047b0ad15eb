package providers

import (
	"context"
	"errors"
)

// ErrMissingCredentials is returned before any network call when a provider
// has no API key configured
var ErrMissingCredentials = errors.New("provider credentials not configured")

// Config represents the configuration for an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	// System is an optional system instruction sent alongside the prompt
	System string
	// JSON asks the provider for a JSON-only response
	JSON bool
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// Credentialed is implemented by providers that need an API key
type Credentialed interface {
	HasCredentials() bool
}
