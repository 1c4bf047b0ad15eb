package enrichment

import (
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/omniscan/internal/models"
)

const systemInstruction = "You are an intelligent scanner assistant. Your job is to decode obscure barcode data into human-readable, useful information."

// buildPrompt asks the model to classify a single decoded payload
func buildPrompt(rawValue, format string) string {
	return fmt.Sprintf(`Analyze the following barcode/QR code data.
Format: %s
Data: %q

1. If it looks like a UPC/EAN (numbers), identify the product details (Name, Category, Description).
2. If it is a URL, infer the website's purpose from the domain and structure.
3. If it is raw text, summarize it.
4. If it is WiFi config (starts with WIFI:), describe the network name.

Provide a helpful, concise analysis.

OUTPUT FORMAT:
Respond with ONLY a JSON object in the following format:

{
  "title": "A short, clear title for the scanned item",
  "category": "Category of the item (e.g., Food, Electronics, Website, Plain Text)",
  "description": "A helpful summary or description of the content",
  "priceEstimate": "Estimated price range if it is a product, otherwise omit",
  "actionableType": "one of PRODUCT, URL, TEXT, WIFI, UNKNOWN",
  "safetyRating": "Brief safety assessment (Safe, Suspicious, Unknown)"
}`, format, rawValue)
}

// ResponseSchema is the structured output schema for providers that support one
func ResponseSchema() *genai.Schema {
	actionable := make([]string, 0, len(models.ActionableTypes))
	for _, t := range models.ActionableTypes {
		actionable = append(actionable, string(t))
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "A short, clear title for the scanned item (e.g., Product Name, Website Title)",
			},
			"category": {
				Type:        genai.TypeString,
				Description: "Category of the item (e.g., Food, Electronics, Website, Plain Text)",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "A helpful summary or description of the content.",
			},
			"priceEstimate": {
				Type:        genai.TypeString,
				Description: "Estimated price range if it is a product, otherwise null.",
				Nullable:    true,
			},
			"actionableType": {
				Type:        genai.TypeString,
				Enum:        actionable,
				Description: "The type of content to determine best UI action.",
			},
			"safetyRating": {
				Type:        genai.TypeString,
				Description: "Brief safety assessment (Safe, Suspicious, Unknown).",
			},
		},
		Required: []string{"title", "category", "description", "actionableType"},
	}
}
