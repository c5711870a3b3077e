// Package htmltomarkdown renders captured page HTML as Markdown for
// completion-service prompts and article summaries.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/pagesense"
)

var _ pagesense.Converter = (*Converter)(nil)

// blankRuns collapses runs of three or more newlines left behind by
// stripped page chrome.
var blankRuns = regexp.MustCompile(`\n{3,}`)

// Converter turns page HTML into Markdown. The table plugin matters here:
// comparison and pricing pages carry their payload in tables, and losing
// that structure degrades downstream field extraction.
type Converter struct {
	conv *converter.Converter
}

func NewConverter() *Converter {
	return &Converter{conv: converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)}
}

// Convert renders html as Markdown with blank runs collapsed. Whitespace-only
// input is EINVALID.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", pagesense.Errorf(pagesense.EINVALID, "empty HTML input")
	}
	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}
	return blankRuns.ReplaceAllString(md, "\n\n"), nil
}
