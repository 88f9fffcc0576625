// Package claude implements llm.Client on the Anthropic Messages API.
package claude

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/hsaban/saband/internal/llm"
)

// maxTokens caps the answer size. Blueprints are small JSON documents; 1024
// tokens leaves headroom for verbose free-text fallbacks.
const maxTokens = 1024

type Client struct {
	client *anthropic.Client
}

func NewClient(apiKey string) *Client {
	return &Client{client: anthropic.NewClient(apiKey)}
}

// NewClientWithBaseURL points the SDK at a custom endpoint. Used by tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{client: anthropic.NewClient(apiKey, anthropic.WithBaseURL(baseURL))}
}

func (c *Client) Name() string { return "Claude AI" }

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]anthropic.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		if turn.Role == llm.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantTextMessage(turn.Content))
			continue
		}
		messages = append(messages, anthropic.NewUserTextMessage(turn.Content))
	}
	messages = append(messages, anthropic.NewUserTextMessage(req.Prompt))

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", fmt.Errorf("claude returned an empty response")
	}
	return text, nil
}
