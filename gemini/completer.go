// Package gemini implements the completion-service port using Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/pagesense"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Completer implements pagesense.Completer at compile time.
var _ pagesense.Completer = (*Completer)(nil)

// Completer implements pagesense.Completer using Google Gemini.
type Completer struct {
	client *genai.Client
}

// NewCompleter creates a new Completer.
func NewCompleter(client *genai.Client) *Completer {
	return &Completer{client: client}
}

// Complete sends the prompt to Gemini and returns its text response.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", pagesense.Errorf(pagesense.EINVALID, "prompt required")
	}
	if c.client == nil {
		return "", pagesense.Errorf(pagesense.EUNAVAILABLE, "gemini client not configured")
	}

	result, err := c.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", pagesense.Errorf(pagesense.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// HealthCheck reports degraded when no client is configured. A configured
// client is assumed reachable; actual failures surface per request.
func (c *Completer) HealthCheck(_ context.Context) pagesense.Health {
	if c.client == nil {
		return pagesense.Health{Status: pagesense.HealthDegraded, Reason: "gemini client not configured"}
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls. A low
// temperature keeps classification and field extraction responses stable.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a web page analysis assistant. When asked for JSON, respond with a single JSON object and nothing else. Base every answer strictly on the page content provided.",
			}},
		},
		Temperature: &temp,
	}
}
