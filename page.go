package pagesense

import (
	"context"
	"time"
)

// PageState represents one rendered page capture. It is created fresh per
// request and discarded after analysis.
type PageState struct {
	URL   string `json:"url"`
	Title string `json:"title"`

	// HTML is the full rendered document after JavaScript execution.
	HTML string `json:"html"`

	// SnapshotTree is the typed accessibility tree. Indexes are assigned in
	// a single depth-first traversal and are stable for this capture.
	SnapshotTree []*AXNode `json:"-"`

	// Snapshot is the textual rendering of SnapshotTree, one node per line
	// in the form `[index] role: "name" (value)`. This is the representation
	// handed to the completion service.
	Snapshot string `json:"snapshot"`

	// ContentMarkdown is a markdown rendition of the primary content region,
	// when one could be identified. Empty otherwise.
	ContentMarkdown string `json:"contentMarkdown,omitempty"`

	// Screenshot holds PNG bytes when a screenshot was requested and
	// succeeded. Screenshot failures are non-fatal.
	Screenshot []byte `json:"-"`

	// Metadata holds best-effort page metadata: statusCode, contentType,
	// finalURL, canonical, language, and meta:<name> entries. Individual
	// extraction failures leave fields absent.
	Metadata map[string]string `json:"metadata"`

	CapturedAt time.Time `json:"capturedAt"`
}

// Validate returns an error if the page state is missing required fields.
// HTML and the accessibility snapshot are always non-empty on success.
func (p *PageState) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page state URL required")
	}
	if p.HTML == "" {
		return Errorf(EINVALID, "page state HTML required")
	}
	if p.Snapshot == "" {
		return Errorf(EINVALID, "page state accessibility snapshot required")
	}
	return nil
}

// CaptureOptions control a single page capture.
type CaptureOptions struct {
	// WaitForIdle waits for common loading indicators to disappear after
	// navigation. Best effort; a timeout here is not a capture failure.
	WaitForIdle bool

	// Timeout bounds navigation. Zero means DefaultCaptureTimeout.
	Timeout time.Duration

	// Screenshot requests a PNG screenshot. Screenshot failure is a warning,
	// not a capture failure.
	Screenshot bool
}

// DefaultCaptureTimeout bounds page navigation when no timeout is given.
const DefaultCaptureTimeout = 30 * time.Second

// Capturer turns a URL into a PageState using a headless browser.
// Implementations must refuse internal/private network targets before any
// network access (EBLOCKED) and must release pooled browser resources
// unconditionally, even on error.
type Capturer interface {
	CapturePage(ctx context.Context, url string, opts CaptureOptions) (*PageState, error)
}
