package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter targets the OpenAI chat completions API or any compatible
// endpoint set through OPENAI_BASE_URL.
type OpenAICompleter struct {
	client    *openai.Client
	modelName string
}

func NewOpenAICompleter(apiKey, baseURL, modelName string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAICompleter{
		client:    openai.NewClientWithConfig(clientConfig),
		modelName: modelName,
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   int(opts.MaxOutputTokens),
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
