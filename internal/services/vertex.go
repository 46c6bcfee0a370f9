package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// VertexCompleter calls Gemini through Vertex AI using application default
// credentials (GOOGLE_APPLICATION_CREDENTIALS).
type VertexCompleter struct {
	client    *genai.Client
	modelName string
}

func NewVertexCompleter(ctx context.Context, projectID, location, modelName string) (*VertexCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Vertex AI: %w", err)
	}

	return &VertexCompleter{client: client, modelName: modelName}, nil
}

func (c *VertexCompleter) Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("Vertex AI error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}
