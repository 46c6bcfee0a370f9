package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiCompleter talks to the Gemini API with an API key or a service
// account file.
type GeminiCompleter struct {
	client    *genai.Client
	modelName string
}

func NewGeminiCompleter(ctx context.Context, apiKey, credentialsFile, modelName string) (*GeminiCompleter, error) {
	var opt option.ClientOption
	switch {
	case apiKey != "":
		opt = option.WithAPIKey(apiKey)
	case credentialsFile != "":
		opt = option.WithCredentialsFile(credentialsFile)
	default:
		return nil, fmt.Errorf("GEMINI_API_KEY or GOOGLE_APPLICATION_CREDENTIALS is required for the gemini provider")
	}

	client, err := genai.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCompleter{client: client, modelName: modelName}, nil
}

func (c *GeminiCompleter) Close() error {
	return c.client.Close()
}

func (c *GeminiCompleter) Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	// GenerativeModel carries its own config, so each call gets a fresh one.
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(opts.Temperature)
	model.SetMaxOutputTokens(opts.MaxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
