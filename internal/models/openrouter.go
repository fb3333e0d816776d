package models

import (
	"context"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterModel returns a model routed through OpenRouter. modelName is the
// OpenRouter slug, such as "openai/gpt-4o-mini".
func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return NewOpenAIModel(ctx, modelName, cfg, openRouterBaseURL)
}
