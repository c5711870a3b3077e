// Package semantic extracts typed fields for a classified page, asking the
// completion service first and degrading to fixed DOM selector lookups.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/pagesense"
)

// Ensure Extractor implements pagesense.FieldExtractor at compile time.
var _ pagesense.FieldExtractor = (*Extractor)(nil)

// DefaultTimeout bounds one completion-service call.
const DefaultTimeout = 20 * time.Second

// snapshotCap limits how much of the accessibility snapshot goes into the
// prompt.
const snapshotCap = 8000

// Extractor extracts category-specific fields from a captured page.
// Extract never returns an empty map: the fallback path always produces at
// least title, url, and the extraction-method marker.
type Extractor struct {
	// Completer is the completion-service port. When nil extraction is
	// purely selector-based.
	Completer pagesense.Completer

	// Articles, when set, enriches the ARTICLE fallback path with main
	// content extraction.
	Articles pagesense.ArticleExtractor

	// Timeout bounds each completion call. Zero means DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// Extract returns the field map for the page. Service and parse failures
// degrade to the DOM fallback; they are never surfaced to the caller.
func (e *Extractor) Extract(ctx context.Context, state *pagesense.PageState, category pagesense.PageType, intent string) map[string]any {
	if e.Completer == nil {
		return e.fallback(state, category)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := e.Completer.Complete(callCtx, buildPrompt(state, category, intent))
	if err != nil {
		e.logger().Warn("field extraction completion failed, using fallback", "url", state.URL, "err", err)
		return e.fallback(state, category)
	}

	data, err := decodeFields(response)
	if err != nil {
		e.logger().Warn("field extraction response rejected, using fallback", "url", state.URL, "err", err)
		return e.fallback(state, category)
	}

	if _, ok := data["title"]; !ok && state.Title != "" {
		data["title"] = state.Title
	}
	if _, ok := data["url"]; !ok {
		data["url"] = state.URL
	}
	data[pagesense.ExtractionMethodKey] = "model"
	return data
}

// HealthCheck reports degraded when no completion service is configured.
func (e *Extractor) HealthCheck(ctx context.Context) pagesense.Health {
	if e.Completer == nil {
		return pagesense.Health{Status: pagesense.HealthDegraded, Reason: "no completion service, selector fallback only"}
	}
	if hc, ok := e.Completer.(pagesense.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return pagesense.Health{Status: pagesense.HealthHealthy}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// buildPrompt assembles the extraction prompt from the category template,
// the optional user intent, and the truncated snapshot.
func buildPrompt(state *pagesense.PageState, category pagesense.PageType, intent string) string {
	fields, ok := categoryFields[category]
	if !ok {
		fields = genericFields
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract structured data from the %s page below.\n", category)
	sb.WriteString("Return a single JSON object with these fields when present: ")
	sb.WriteString(strings.Join(fields, ", "))
	sb.WriteString(". Omit fields you cannot find. Use element indexes from the snapshot to locate values.\n")
	if intent != "" {
		fmt.Fprintf(&sb, "The user specifically wants: %s\n", intent)
	}
	fmt.Fprintf(&sb, "\nURL: %s\nTitle: %s\n\nAccessibility snapshot:\n%s\n",
		state.URL, state.Title, truncate(state.Snapshot, snapshotCap))
	return sb.String()
}

// decodeFields extracts the first balanced JSON object from the model
// response and decodes it as a field map. An empty object is rejected so
// the caller falls back instead of returning nothing.
func decodeFields(response string) (map[string]any, error) {
	obj := firstJSONObject(response)
	if obj == "" {
		return nil, pagesense.Errorf(pagesense.EINVALID, "no JSON object in response")
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(obj), &data); err != nil {
		return nil, pagesense.Errorf(pagesense.EINVALID, "decoding response: %v", err)
	}
	if len(data) == 0 {
		return nil, pagesense.Errorf(pagesense.EINVALID, "empty field object")
	}
	return data, nil
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

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
