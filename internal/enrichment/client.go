package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/omniscan/internal/models"
	"github.com/lehigh-university-libraries/omniscan/internal/providers"
)

// Fallback results returned instead of errors
var (
	ConfigurationMissing = models.EnrichmentResult{
		Title:          "API Key Missing",
		Category:       "System",
		Description:    "Please provide a valid API key to analyze this code.",
		ActionableType: models.ActionableText,
	}

	AnalysisFailed = models.EnrichmentResult{
		Title:          "Analysis Failed",
		Category:       "Error",
		Description:    "Could not analyze the scanned data at this time.",
		ActionableType: models.ActionableUnknown,
	}
)

// Client turns decoded payloads into enrichment results using an LLM provider
type Client struct {
	provider    providers.Provider
	model       string
	temperature float64
}

func NewClient(provider providers.Provider, model string, temperature float64) *Client {
	return &Client{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// Analyze makes a single provider call for the payload. It always returns a
// valid result: every failure is converted to a fallback value.
func (c *Client) Analyze(ctx context.Context, rawValue, format string) models.EnrichmentResult {
	if cred, ok := c.provider.(providers.Credentialed); ok && !cred.HasCredentials() {
		slog.Warn("Enrichment provider has no credentials configured", "format", format)
		return ConfigurationMissing
	}

	response, err := c.provider.ExtractText(ctx, providers.Config{
		Model:       c.model,
		Temperature: c.temperature,
		Prompt:      buildPrompt(rawValue, format),
		System:      systemInstruction,
		JSON:        true,
	})
	if err != nil {
		if errors.Is(err, providers.ErrMissingCredentials) {
			return ConfigurationMissing
		}
		slog.Error("Enrichment analysis failed", "format", format, "err", err)
		return AnalysisFailed
	}

	result, err := parseResult(response)
	if err != nil {
		slog.Error("Unable to parse enrichment response", "format", format, "length", len(response), "err", err)
		return AnalysisFailed
	}

	slog.Debug("Enrichment analysis complete", "format", format, "actionable_type", result.ActionableType)
	return result
}

// parseResult decodes the provider's JSON answer into an EnrichmentResult
func parseResult(response string) (models.EnrichmentResult, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	if response == "" {
		return models.EnrichmentResult{}, fmt.Errorf("empty response")
	}

	var raw struct {
		Title          *string `json:"title"`
		Category       *string `json:"category"`
		Description    *string `json:"description"`
		PriceEstimate  *string `json:"priceEstimate"`
		ActionableType *string `json:"actionableType"`
		SafetyRating   *string `json:"safetyRating"`
	}
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return models.EnrichmentResult{}, fmt.Errorf("failed to decode JSON: %w", err)
	}

	switch {
	case raw.Title == nil:
		return models.EnrichmentResult{}, fmt.Errorf("missing required field: title")
	case raw.Category == nil:
		return models.EnrichmentResult{}, fmt.Errorf("missing required field: category")
	case raw.Description == nil:
		return models.EnrichmentResult{}, fmt.Errorf("missing required field: description")
	case raw.ActionableType == nil:
		return models.EnrichmentResult{}, fmt.Errorf("missing required field: actionableType")
	}

	actionable := models.ActionableType(strings.ToUpper(strings.TrimSpace(*raw.ActionableType)))
	if !actionable.Valid() {
		slog.Warn("Unknown actionable type in enrichment response", "actionable_type", *raw.ActionableType)
		actionable = models.ActionableUnknown
	}

	return models.EnrichmentResult{
		Title:          *raw.Title,
		Category:       *raw.Category,
		Description:    *raw.Description,
		PriceEstimate:  deref(raw.PriceEstimate),
		ActionableType: actionable,
		SafetyRating:   deref(raw.SafetyRating),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
