// Package openai implements the completion-service port using the OpenAI
// chat completion API, or any OpenAI-compatible backend.
package openai

import (
	"context"
	"strings"

	"github.com/fwojciec/pagesense"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = "You are a web page analysis assistant. When asked for JSON, respond with a single JSON object and nothing else. Base every answer strictly on the page content provided."

// Client is the minimal chat surface needed from the OpenAI SDK. It mirrors
// CreateChatCompletion so any compatible backend can be adapted.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Ensure Completer implements pagesense.Completer at compile time.
var _ pagesense.Completer = (*Completer)(nil)

// Completer implements pagesense.Completer using an OpenAI chat model.
type Completer struct {
	client Client
	model  string
}

// NewCompleter creates a new Completer. An empty model selects DefaultModel.
func NewCompleter(client Client, model string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	return &Completer{client: client, model: model}
}

// Complete sends the prompt as a single-turn chat and returns the model's
// message content.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", pagesense.Errorf(pagesense.EINVALID, "prompt required")
	}
	if c.client == nil {
		return "", pagesense.Errorf(pagesense.EUNAVAILABLE, "openai client not configured")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		N:           1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", pagesense.Errorf(pagesense.EINTERNAL, "openai returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck reports degraded when no client is configured.
func (c *Completer) HealthCheck(_ context.Context) pagesense.Health {
	if c.client == nil {
		return pagesense.Health{Status: pagesense.HealthDegraded, Reason: "openai client not configured"}
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}
