package rod

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagesense"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Capturer implements pagesense.Capturer at compile time.
var _ pagesense.Capturer = (*Capturer)(nil)

// responseWait bounds how long we wait for the main document response after
// the load event has already fired.
const responseWait = 2 * time.Second

// idleIndicators are selectors for common loading indicators. Waiting for
// them to disappear is best effort.
const idleIndicators = ".loading, .spinner, [aria-busy='true'], .skeleton"

// Capturer turns URLs into PageStates using pooled browser connections.
type Capturer struct {
	Pool *Pool

	// Converter, when set, produces a markdown rendition of the primary
	// content region. Conversion failure is non-fatal.
	Converter pagesense.Converter

	Logger *slog.Logger
}

// CapturePage navigates to url in an isolated page and captures its rendered
// state. The URL is refused before any network access if it targets an
// internal address. The pooled browser is released unconditionally.
func (c *Capturer) CapturePage(ctx context.Context, url string, opts pagesense.CaptureOptions) (*pagesense.PageState, error) {
	if err := pagesense.ValidateExternalURL(url); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = pagesense.DefaultCaptureTimeout
	}

	lease, err := c.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	page, err := lease.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		lease.MarkBroken()
		return nil, pagesense.Errorf(pagesense.EUNAVAILABLE, "opening browser page: %v", err)
	}
	defer page.Close()
	lease.IncrementPages()

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page = page.Context(navCtx)

	// Arm the main-document response listener before navigating. The
	// response is published through a buffered channel; the event callback
	// runs on the event loop goroutine, so it must not share variables with
	// this one.
	respCh := make(chan *proto.NetworkResponseReceived, 1)
	waitResp := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			respCh <- e
			return true
		}
		return false
	})

	if err := page.Navigate(url); err != nil {
		return nil, navigationError(navCtx, timeout, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, navigationError(navCtx, timeout, err)
	}

	go waitResp()
	resp := awaitDocumentResponse(navCtx, respCh, responseWait)
	if resp == nil || resp.Response == nil {
		return nil, pagesense.Errorf(pagesense.ENORESPONSE, "no response received for %s", url)
	}
	if resp.Response.Status >= 400 {
		return nil, pagesense.Errorf(pagesense.ENAVIGATION, "navigation to %s returned status %d", url, resp.Response.Status)
	}

	if opts.WaitForIdle {
		c.waitForIdle(page)
	}

	state := &pagesense.PageState{
		URL:        url,
		Metadata:   make(map[string]string),
		CapturedAt: time.Now(),
	}

	html, err := page.HTML()
	if err != nil {
		lease.MarkBroken()
		return nil, pagesense.Errorf(pagesense.EUNAVAILABLE, "reading rendered HTML: %v", err)
	}
	state.HTML = html

	tree, err := buildAXTree(page)
	if err != nil {
		return nil, pagesense.Errorf(pagesense.ESNAPSHOT, "building accessibility snapshot: %v", err)
	}
	state.SnapshotTree = tree
	state.Snapshot = pagesense.RenderSnapshot(tree)
	if state.Snapshot == "" {
		return nil, pagesense.Errorf(pagesense.ESNAPSHOT, "accessibility snapshot is empty for %s", url)
	}

	if info, err := page.Info(); err == nil {
		state.Title = info.Title
		state.Metadata["finalURL"] = info.URL
	} else {
		c.logger().Warn("reading page info", "url", url, "err", err)
	}

	if opts.Screenshot {
		shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			c.logger().Warn("screenshot failed", "url", url, "err", err)
		} else {
			state.Screenshot = shot
		}
	}

	state.Metadata["statusCode"] = strconv.Itoa(resp.Response.Status)
	if resp.Response.MIMEType != "" {
		state.Metadata["contentType"] = resp.Response.MIMEType
	}
	c.extractHTMLMetadata(state)
	c.extractContentMarkdown(state)

	return state, nil
}

// Close releases the underlying browser pool.
func (c *Capturer) Close() error {
	return c.Pool.Close()
}

// HealthCheck reports the capturer's condition, which is its pool's.
func (c *Capturer) HealthCheck(ctx context.Context) pagesense.Health {
	return c.Pool.HealthCheck(ctx)
}

// waitForIdle polls until common loading indicators disappear or the grace
// period runs out. Never fatal.
func (c *Capturer) waitForIdle(page *rod.Page) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		has, _, err := page.Has(idleIndicators)
		if err != nil || !has {
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// extractHTMLMetadata fills meta tags, canonical URL, and language from the
// rendered HTML. Any individual field's failure is logged and omitted.
func (c *Capturer) extractHTMLMetadata(state *pagesense.PageState) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(state.HTML))
	if err != nil {
		c.logger().Warn("metadata extraction failed", "url", state.URL, "err", err)
		return
	}

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		content, ok := sel.Attr("content")
		if !ok || content == "" {
			return
		}
		if name, ok := sel.Attr("name"); ok && name != "" {
			state.Metadata["meta:"+name] = content
		} else if prop, ok := sel.Attr("property"); ok && prop != "" {
			state.Metadata["meta:"+prop] = content
		}
	})

	if href, ok := doc.Find("link[rel='canonical']").First().Attr("href"); ok && href != "" {
		state.Metadata["canonical"] = href
	}
	if lang, ok := doc.Find("html").First().Attr("lang"); ok && lang != "" {
		state.Metadata["language"] = lang
	}
	if state.Title == "" {
		state.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
}

// primaryContentSelectors are tried in order when looking for the main
// content region to convert to markdown.
var primaryContentSelectors = []string{"main", "article", "[role='main']", "#content", ".content"}

// extractContentMarkdown converts the primary content region to markdown
// when a converter is configured. Never fatal.
func (c *Capturer) extractContentMarkdown(state *pagesense.PageState) {
	if c.Converter == nil {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(state.HTML))
	if err != nil {
		return
	}
	for _, sel := range primaryContentSelectors {
		region := doc.Find(sel).First()
		if region.Length() == 0 {
			continue
		}
		inner, err := region.Html()
		if err != nil || strings.TrimSpace(inner) == "" {
			continue
		}
		md, err := c.Converter.Convert(inner)
		if err != nil {
			c.logger().Warn("content markdown conversion failed", "url", state.URL, "err", err)
			return
		}
		state.ContentMarkdown = md
		return
	}
}

func (c *Capturer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// awaitDocumentResponse returns the main-document response once published,
// or nil when none arrives within the grace period or before ctx is done.
// The response normally arrives before the load event, so the grace period
// is short.
func awaitDocumentResponse(ctx context.Context, respCh <-chan *proto.NetworkResponseReceived, grace time.Duration) *proto.NetworkResponseReceived {
	select {
	case resp := <-respCh:
		return resp
	case <-time.After(grace):
		return nil
	case <-ctx.Done():
		return nil
	}
}

// navigationError classifies a navigation failure: deadline expiry becomes a
// timeout, everything else a navigation error.
func navigationError(ctx context.Context, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return pagesense.Errorf(pagesense.ETIMEOUT, "navigation timed out after %s", timeout)
	}
	return pagesense.Errorf(pagesense.ENAVIGATION, "navigation failed: %v", err)
}
