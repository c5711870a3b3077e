package pagesense_test

import (
	"testing"

	"github.com/fwojciec/pagesense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("assigns indexes in depth-first order", func(t *testing.T) {
		t.Parallel()

		tree := []*pagesense.AXNode{
			{
				Role: "WebArea", Name: "Store",
				Children: []*pagesense.AXNode{
					{Role: "heading", Name: "Widget"},
					{Role: "button", Name: "Add to cart"},
				},
			},
		}

		out := pagesense.RenderSnapshot(tree)

		assert.Equal(t, 0, tree[0].Index)
		assert.Equal(t, 1, tree[0].Children[0].Index)
		assert.Equal(t, 2, tree[0].Children[1].Index)
		assert.Contains(t, out, `[0] WebArea: "Store"`)
		assert.Contains(t, out, `  [1] heading: "Widget"`)
		assert.Contains(t, out, `  [2] button: "Add to cart"`)
	})

	t.Run("skips decorative nodes but descends into children", func(t *testing.T) {
		t.Parallel()

		tree := []*pagesense.AXNode{
			{
				Role: "generic",
				Children: []*pagesense.AXNode{
					{Role: "link", Name: "Home"},
				},
			},
		}

		out := pagesense.RenderSnapshot(tree)

		assert.Equal(t, -1, tree[0].Index)
		assert.Equal(t, 0, tree[0].Children[0].Index)
		assert.NotContains(t, out, "generic")
		assert.Contains(t, out, `[0] link: "Home"`)
	})

	t.Run("renders decorative node that carries a name", func(t *testing.T) {
		t.Parallel()

		tree := []*pagesense.AXNode{{Role: "generic", Name: "price"}}

		out := pagesense.RenderSnapshot(tree)

		assert.Contains(t, out, `[0] generic: "price"`)
	})

	t.Run("includes value in parentheses", func(t *testing.T) {
		t.Parallel()

		tree := []*pagesense.AXNode{{Role: "textbox", Name: "Email", Value: "a@b.c"}}

		out := pagesense.RenderSnapshot(tree)

		assert.Contains(t, out, `[0] textbox: "Email" (a@b.c)`)
	})
}

func TestParseSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a rendered snapshot", func(t *testing.T) {
		t.Parallel()

		tree := []*pagesense.AXNode{
			{
				Role: "WebArea", Name: "Store",
				Children: []*pagesense.AXNode{
					{Role: "button", Name: "Add to cart"},
					{Role: "textbox", Name: "Qty", Value: "1"},
				},
			},
		}

		elements := pagesense.ParseSnapshot(pagesense.RenderSnapshot(tree))

		require.Len(t, elements, 3)
		assert.Equal(t, "WebArea", elements[0].Role)
		assert.Equal(t, 0, elements[0].Depth)
		assert.Equal(t, "Add to cart", elements[1].Name)
		assert.Equal(t, 1, elements[1].Depth)
		assert.Equal(t, "1", elements[2].Text)
	})

	t.Run("skips malformed lines", func(t *testing.T) {
		t.Parallel()

		snapshot := "[0] link: \"Home\"\nnot a snapshot line\n  [oops] button: \"x\"\n"

		elements := pagesense.ParseSnapshot(snapshot)

		require.Len(t, elements, 1)
		assert.Equal(t, "Home", elements[0].Name)
	})

	t.Run("handles quotes inside names", func(t *testing.T) {
		t.Parallel()

		tree := []*pagesense.AXNode{{Role: "heading", Name: `The "Best" Widget`}}

		elements := pagesense.ParseSnapshot(pagesense.RenderSnapshot(tree))

		require.Len(t, elements, 1)
		assert.Equal(t, `The "Best" Widget`, elements[0].Name)
	})
}
