// Package llm abstracts the hosted generative-text providers behind a single
// interface, with one adapter per vendor and a shared blueprint parser.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Chat roles as they appear in transcripts. Anything else is sent as a user
// turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange in a conversation, sent before the prompt so
// the model can resolve references to earlier answers.
type Turn struct {
	Role    string
	Content string
}

// Request is a single generation call. Model is a provider-specific model id.
// History carries earlier turns of the conversation, oldest first.
type Request struct {
	Model   string
	System  string
	History []Turn
	Prompt  string
}

// Client generates free text for a prompt. Implementations return the model's
// raw text; parsing into a Blueprint happens in ParseBlueprint.
type Client interface {
	// Name is a short provider label, used as the source of fallback
	// blueprints ("Gemini AI", "Claude AI").
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrNoModels is returned by Failover when the configured model list is empty.
var ErrNoModels = errors.New("no models configured")

// Failover tries an ordered list of model ids against one provider and
// returns the first success. There is no backoff or retry beyond the list
// itself; a model that errors is skipped for this request only.
type Failover struct {
	client Client
	models []string
	logger *slog.Logger
}

func NewFailover(client Client, models []string, logger *slog.Logger) *Failover {
	return &Failover{client: client, models: models, logger: logger}
}

func (f *Failover) Name() string { return f.client.Name() }

func (f *Failover) Generate(ctx context.Context, req Request) (string, error) {
	models := f.models
	if req.Model != "" {
		models = []string{req.Model}
	}
	if len(models) == 0 {
		return "", ErrNoModels
	}

	var lastErr error
	for _, model := range models {
		attempt := req
		attempt.Model = model
		text, err := f.client.Generate(ctx, attempt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		f.logger.Warn("model call failed, trying next candidate", "model", model, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("all %d model candidates failed: %w", len(models), lastErr)
}
