package pagesense

import (
	"context"
	"time"
)

// ExtractionMethodKey marks how a field map was produced. Fallback
// extraction always sets it to "fallback".
const ExtractionMethodKey = "_extraction_method"

// FieldExtractor extracts typed fields for a known page category.
// Extract never returns an empty map: on total failure it still contains at
// least title, url, and an explicit fallback marker.
type FieldExtractor interface {
	Extract(ctx context.Context, state *PageState, category PageType, intent string) map[string]any
}

// ExtractionResult is the final answer for one extraction request.
type ExtractionResult struct {
	Success        bool           `json:"success"`
	URL            string         `json:"url"`
	PageType       PageType       `json:"pageType"`
	Confidence     float64        `json:"confidence"`
	Data           map[string]any `json:"data"`
	Errors         []string       `json:"errors,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	FromCache      bool           `json:"fromCache,omitempty"`
	ExtractedAt    time.Time      `json:"extractedAt"`
	ProcessingTime time.Duration  `json:"processingTimeMs"`
}

// Validate enforces the result invariants: a failed result carries at least
// one error and no data; a successful result carries positive confidence.
func (r *ExtractionResult) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "extraction result URL required")
	}
	if !r.Success {
		if len(r.Errors) == 0 {
			return Errorf(EINVALID, "failed extraction result must carry errors")
		}
		if len(r.Data) != 0 {
			return Errorf(EINVALID, "failed extraction result must not carry data")
		}
		return nil
	}
	if r.Confidence <= 0 {
		return Errorf(EINVALID, "successful extraction result must have positive confidence")
	}
	return nil
}
