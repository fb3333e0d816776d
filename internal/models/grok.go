package models

import (
	"context"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const grokBaseURL = "https://api.x.ai/v1"

// NewGrokModel returns an x.ai Grok model (e.g., "grok-4-fast") through the
// OpenAI compatible endpoint.
func NewGrokModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return NewOpenAIModel(ctx, modelName, cfg, grokBaseURL)
}
