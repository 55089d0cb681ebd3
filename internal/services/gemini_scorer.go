// internal/services/gemini_scorer.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/stockpilot/inventory-backend/internal/apperrors"
	"github.com/stockpilot/inventory-backend/internal/config"
)

// GeminiScorer asks a Gemini model to refine reorder suggestions. It is
// optional: NewGeminiScorer returns nil when no API key is configured.
type GeminiScorer struct {
	apiKey string
	model  string
}

func NewGeminiScorer(cfg config.AIConfig) *GeminiScorer {
	if cfg.GeminiAPIKey == "" {
		return nil
	}
	return &GeminiScorer{
		apiKey: cfg.GeminiAPIKey,
		model:  cfg.Model,
	}
}

func (s *GeminiScorer) Score(ctx context.Context, signals []ProductSignal) ([]ReorderSuggestion, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, apperrors.NewExternalServiceFailure(err)
	}
	defer client.Close()

	prompt, err := buildReorderPrompt(signals)
	if err != nil {
		return nil, apperrors.NewExternalServiceFailure(err)
	}

	model := client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, apperrors.NewExternalServiceFailure(err)
	}

	text := extractText(resp)
	suggestions, err := parseSuggestions(text)
	if err != nil {
		return nil, apperrors.NewExternalServiceFailure(err)
	}

	return suggestions, nil
}

func buildReorderPrompt(signals []ProductSignal) (string, error) {
	data, err := json.MarshalIndent(signals, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`As an inventory management AI, analyze the following product data and provide reorder suggestions.
Consider current stock levels, minimum stock requirements, average monthly sales, and seasonal patterns.

Product Data:
%s

For each product that needs reordering, provide:
1. Product name
2. Current stock level
3. Suggested reorder quantity
4. Brief reason for the suggestion (max 50 words)

Focus on products with stock levels approaching or below minimum thresholds, and consider sales velocity.
Provide response in JSON format as an array of objects with properties: productName, currentStock, suggestedQuantity, reason.`, data), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

// parseSuggestions tolerates the model fencing its JSON in a code block.
func parseSuggestions(text string) ([]ReorderSuggestion, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var suggestions []ReorderSuggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil {
		return nil, fmt.Errorf("unparseable scorer response: %w", err)
	}
	return suggestions, nil
}
