package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps the OpenAI API for the adaptive advisor and the screen
// reader. Model and base URL are overridable for compatible gateways.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient reads the API key from OPENAI_API_KEY.
func NewClient(model, baseURL string) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}, nil
}

// completeJSON sends a chat request in JSON object mode with a small
// backoff loop for rate limits.
func (c *Client) completeJSON(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if strings.Contains(err.Error(), "429") {
				select {
				case <-time.After(time.Duration(3*(1<<attempt)) * time.Second):
					continue
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			return "", fmt.Errorf("OpenAI error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("OpenAI returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("OpenAI error after retries: %w", lastErr)
}
