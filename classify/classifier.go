// Package classify decides a page's category using the completion service,
// degrading to keyword heuristics when the service is unavailable or its
// response cannot be decoded.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/pagesense"
)

// Ensure Classifier implements pagesense.Classifier at compile time.
var _ pagesense.Classifier = (*Classifier)(nil)

// DefaultTimeout bounds one completion-service call.
const DefaultTimeout = 20 * time.Second

// snapshotCap limits how much of the accessibility snapshot goes into the
// prompt.
const snapshotCap = 8000

// Classifier determines page categories with the completion service plus a
// heuristic fallback. Classify never fails: every error path degrades to
// the heuristic result.
type Classifier struct {
	// Completer is the completion-service port. When nil the classifier is
	// purely heuristic.
	Completer pagesense.Completer

	// Timeout bounds each completion call. Zero means DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// modelResponse is the JSON object the completion service is asked for.
type modelResponse struct {
	Category        string   `json:"category"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
	KeyElements     []string `json:"key_elements"`
	AvailableFields []string `json:"available_fields"`
}

// Classify returns the page classification. Service or parse failures are
// logged and absorbed; the caller always gets a usable result.
func (c *Classifier) Classify(ctx context.Context, state *pagesense.PageState) *pagesense.Classification {
	if c.Completer == nil {
		return c.heuristic(state)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := c.Completer.Complete(callCtx, buildPrompt(state))
	if err != nil {
		c.logger().Warn("classification completion failed, using heuristic", "url", state.URL, "err", err)
		return c.heuristic(state)
	}

	result, err := decodeResponse(response)
	if err != nil {
		c.logger().Warn("classification response rejected, using heuristic", "url", state.URL, "err", err)
		return c.heuristic(state)
	}
	return result
}

// HealthCheck reports degraded when no completion service is configured.
func (c *Classifier) HealthCheck(ctx context.Context) pagesense.Health {
	if c.Completer == nil {
		return pagesense.Health{Status: pagesense.HealthDegraded, Reason: "no completion service, heuristic only"}
	}
	if hc, ok := c.Completer.(pagesense.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}

func (c *Classifier) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// buildPrompt assembles the classification prompt: URL, title, meta tags,
// and the truncated accessibility snapshot.
func buildPrompt(state *pagesense.PageState) string {
	var sb strings.Builder
	sb.WriteString("Classify the web page below into exactly one category: ")
	for i, pt := range pagesense.PageTypes() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(pt))
	}
	sb.WriteString(".\n\n")
	fmt.Fprintf(&sb, "URL: %s\n", state.URL)
	fmt.Fprintf(&sb, "Title: %s\n", state.Title)
	for k, v := range state.Metadata {
		if strings.HasPrefix(k, "meta:") {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	sb.WriteString("\nAccessibility snapshot:\n")
	sb.WriteString(truncate(state.Snapshot, snapshotCap))
	sb.WriteString("\n\nRespond with a JSON object: ")
	sb.WriteString(`{"category": "...", "confidence": 0.0, "reasoning": "...", "key_elements": [], "available_fields": []}`)
	return sb.String()
}

// decodeResponse extracts the first balanced JSON object from the model
// response and decodes it strictly. Validation failure falls back
// deterministically; no substring repair is attempted.
func decodeResponse(response string) (*pagesense.Classification, error) {
	obj := firstJSONObject(response)
	if obj == "" {
		return nil, pagesense.Errorf(pagesense.EINVALID, "no JSON object in response")
	}

	var mr modelResponse
	dec := json.NewDecoder(strings.NewReader(obj))
	if err := dec.Decode(&mr); err != nil {
		return nil, pagesense.Errorf(pagesense.EINVALID, "decoding response: %v", err)
	}

	category := pagesense.PageType(strings.ToUpper(strings.TrimSpace(mr.Category)))
	if !pagesense.ValidPageType(category) {
		return nil, pagesense.Errorf(pagesense.EINVALID, "category %q not in the closed set", mr.Category)
	}
	// A model that reports no confidence gave no usable signal; the
	// heuristic fallback at least carries its zero-signal floor.
	if mr.Confidence <= 0 {
		return nil, pagesense.Errorf(pagesense.EINVALID, "non-positive confidence %v", mr.Confidence)
	}

	return &pagesense.Classification{
		Category:        category,
		Confidence:      clamp01(mr.Confidence),
		Reasoning:       mr.Reasoning,
		KeyElements:     mr.KeyElements,
		AvailableFields: mr.AvailableFields,
		Method:          pagesense.ClassifyMethodModel,
	}, nil
}

// firstJSONObject returns the first balanced {...} substring of s, honoring
// JSON string escaping, or "" when none exists.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
