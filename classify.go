package pagesense

import "context"

// Classification methods.
const (
	ClassifyMethodModel     = "model"
	ClassifyMethodHeuristic = "heuristic"
)

// Classification is the model or heuristic page classification.
type Classification struct {
	Category        PageType `json:"category"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning,omitempty"`
	KeyElements     []string `json:"keyElements,omitempty"`
	AvailableFields []string `json:"availableFields,omitempty"`

	// Method records how the classification was produced: "model" or
	// "heuristic". Below 0.5 confidence the orchestrator may override the
	// category with the DOM analyzer's heuristic type.
	Method string `json:"method"`
}

// Classifier decides the final page type using the completion service with
// a heuristic fallback. Classify always returns a usable result; service or
// parse failures degrade to the heuristic path rather than surfacing.
type Classifier interface {
	Classify(ctx context.Context, state *PageState) *Classification
}
