package models

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/feelings/internal/config"
)

// New returns the model selected by cfg.LLMProvider.
func New(ctx context.Context, cfg config.Config) (model.LLM, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}

	clientCfg := &genai.ClientConfig{APIKey: cfg.APIKey()}
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIModel(ctx, cfg.LLMModel, clientCfg, cfg.OpenAIBaseURL)
	case config.ProviderGrok:
		return NewGrokModel(ctx, cfg.LLMModel, clientCfg)
	case config.ProviderOpenRouter:
		return NewOpenRouterModel(ctx, cfg.LLMModel, clientCfg)
	case config.ProviderGemini:
		return NewGeminiModel(ctx, cfg.LLMModel, cfg.GoogleAPIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
