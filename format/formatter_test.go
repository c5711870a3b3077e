package format_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/pagesense"
	"github.com/fwojciec/pagesense/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_JSON(t *testing.T) {
	t.Parallel()

	f := format.NewFormatter(nil)
	out := f.Format(map[string]any{
		"name":  "Trail Tent",
		"price": "$199",
	}, pagesense.PageTypeProduct, pagesense.FormatJSON)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Trail Tent", decoded["name"])
	assert.Equal(t, "$199", decoded["price"])
}

func TestFormatter_Markdown(t *testing.T) {
	t.Parallel()

	t.Run("product template", func(t *testing.T) {
		t.Parallel()

		f := format.NewFormatter(nil)
		out := f.Format(map[string]any{
			"name":         "Trail Tent",
			"price":        "$199",
			"availability": "In Stock",
			"description":  "A lightweight two-person tent.",
			"url":          "https://example.com/products/1",
		}, pagesense.PageTypeProduct, pagesense.FormatMarkdown)

		assert.Contains(t, out, "# Trail Tent")
		assert.Contains(t, out, "**Price:** $199")
		assert.Contains(t, out, "**Availability:** In Stock")
		assert.Contains(t, out, "A lightweight two-person tent.")
		assert.Contains(t, out, "Source: https://example.com/products/1")
	})

	t.Run("campground template lists amenities", func(t *testing.T) {
		t.Parallel()

		f := format.NewFormatter(nil)
		out := f.Format(map[string]any{
			"name":      "Pine Valley Campground",
			"address":   "1 Forest Rd",
			"amenities": []any{"showers", "fire pits"},
		}, pagesense.PageTypeCampground, pagesense.FormatMarkdown)

		assert.Contains(t, out, "# Pine Valley Campground")
		assert.Contains(t, out, "**Address:** 1 Forest Rd")
		assert.Contains(t, out, "- showers")
		assert.Contains(t, out, "- fire pits")
	})

	t.Run("unknown category uses generic template", func(t *testing.T) {
		t.Parallel()

		f := format.NewFormatter(nil)
		out := f.Format(map[string]any{
			"title":              "Some Page",
			"headings":           []any{"First", "Second"},
			"word_count":         float64(420),
			"_extraction_method": "fallback",
		}, pagesense.PageTypeUnknown, pagesense.FormatMarkdown)

		assert.Contains(t, out, "# Some Page")
		assert.Contains(t, out, "- First")
		assert.Contains(t, out, "**Word count:** 420")
		assert.NotContains(t, out, "_extraction_method")
	})
}

func TestFormatter_Natural(t *testing.T) {
	t.Parallel()

	t.Run("product sentence", func(t *testing.T) {
		t.Parallel()

		f := format.NewFormatter(nil)
		out := f.Format(map[string]any{
			"name":         "Trail Tent",
			"price":        "$199",
			"availability": "In Stock",
		}, pagesense.PageTypeProduct, pagesense.FormatNatural)

		assert.Contains(t, out, "Trail Tent is priced at $199")
		assert.Contains(t, out, "in stock")
	})

	t.Run("campground with amenities", func(t *testing.T) {
		t.Parallel()

		f := format.NewFormatter(nil)
		out := f.Format(map[string]any{
			"name":      "Pine Valley Campground",
			"address":   "1 Forest Rd",
			"amenities": []any{"showers", "fire pits", "a camp store"},
		}, pagesense.PageTypeCampground, pagesense.FormatNatural)

		assert.Contains(t, out, "Pine Valley Campground is located at 1 Forest Rd.")
		assert.Contains(t, out, "showers, fire pits, and a camp store")
	})

	t.Run("empty data yields a fallback message", func(t *testing.T) {
		t.Parallel()

		f := format.NewFormatter(nil)
		out := f.Format(map[string]any{}, pagesense.PageTypeUnknown, pagesense.FormatNatural)
		assert.Equal(t, "Here is what was found on this page:", out)
	})
}

func TestFormatter_NeverPanics(t *testing.T) {
	t.Parallel()

	f := format.NewFormatter(nil)

	hostile := []map[string]any{
		nil,
		{},
		{"name": nil, "amenities": 42, "price": []any{nil, map[string]any{"deep": []any{1, 2}}}},
		{"items": map[string]any{"not": "a list"}, "description": make([]byte, 0)},
	}

	for _, data := range hostile {
		for _, category := range pagesense.PageTypes() {
			for _, outputFormat := range []pagesense.OutputFormat{
				pagesense.FormatJSON, pagesense.FormatMarkdown, pagesense.FormatNatural, "bogus",
			} {
				assert.NotPanics(t, func() {
					f.Format(data, category, outputFormat)
				})
			}
		}
	}
}
