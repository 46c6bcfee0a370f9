package services

import (
	"context"
	"errors"
	"fmt"

	"ikari-backend/internal/config"
)

// Completer sends a single prompt to a hosted language model and returns the
// generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// GenerationOptions are the sampling parameters of one completion call.
type GenerationOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

var errEmptyCompletion = errors.New("model returned no text")

// NewCompleter builds the completion client selected by LLM_PROVIDER. On
// failure the returned Completer is a true nil interface.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderVertex:
		c, err := NewVertexCompleter(ctx, cfg.ProjectID, cfg.LLMLocation, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.CredentialsFile, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAI:
		c, err := NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
