// Package gemini implements llm.Client on the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/hsaban/saband/internal/llm"
)

type Client struct {
	client *genai.Client
}

// NewClient creates a Gemini client for the public Gemini API.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	return newClient(ctx, apiKey, "")
}

// NewClientWithBaseURL points the SDK at a custom endpoint. Used by tests.
func NewClientWithBaseURL(ctx context.Context, apiKey, baseURL string) (*Client, error) {
	return newClient(ctx, apiKey, baseURL)
}

func newClient(ctx context.Context, apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Name() string { return "Gemini AI" }

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	config := &genai.GenerateContentConfig{
		// Grounding via Google Search lets free-form answers pull in specs
		// and media the catalog lacks.
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		var role genai.Role = genai.RoleUser
		if turn.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
