package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lehigh-university-libraries/omniscan/internal/providers"
)

const defaultURL = "https://api.openai.com/v1/chat/completions"

// OpenAI is a provider for OpenAI
type OpenAI struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// New returns a new OpenAI provider
func New(apiKey string) *OpenAI {
	return &OpenAI{
		apiKey:     apiKey,
		url:        defaultURL,
		httpClient: &http.Client{},
	}
}

// HasCredentials reports whether an API key was supplied
func (o *OpenAI) HasCredentials() bool {
	return o.apiKey != ""
}

// ExtractText extracts text from the given prompt using OpenAI
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set: %w", providers.ErrMissingCredentials)
	}

	messages := []map[string]string{}
	if config.System != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": config.System,
		})
	}
	messages = append(messages, map[string]string{
		"role":    "user",
		"content": config.Prompt,
	})

	body := map[string]interface{}{
		"model":       config.Model,
		"messages":    messages,
		"temperature": config.Temperature,
	}
	if config.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
