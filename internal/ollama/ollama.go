package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/omniscan/internal/providers"
)

const defaultURL = "http://localhost:11434"

// Ollama is a provider for Ollama
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a new Ollama provider. An empty baseURL uses the local default.
func New(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &Ollama{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// ExtractText extracts text from the given prompt using Ollama
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	url := o.baseURL + "/api/generate"

	body := map[string]interface{}{
		"model":  config.Model,
		"prompt": config.Prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": config.Temperature,
		},
	}
	if config.System != "" {
		body["system"] = config.System
	}
	if config.JSON {
		body["format"] = "json"
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
