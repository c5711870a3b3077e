package rod

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysmood/gson"
)

func axValue(s string) *proto.AccessibilityAXValue {
	return &proto.AccessibilityAXValue{Value: gson.New(s)}
}

func TestConvertAXNodes(t *testing.T) {
	t.Parallel()

	nodes := []*proto.AccessibilityAXNode{
		{
			NodeID:   "1",
			Role:     axValue("WebArea"),
			Name:     axValue("Store"),
			ChildIDs: []proto.AccessibilityAXNodeID{"2", "3"},
		},
		{NodeID: "2", Role: axValue("heading"), Name: axValue("Widget")},
		{NodeID: "3", Role: axValue("button"), Name: axValue("Add to cart")},
	}

	roots := convertAXNodes(nodes)

	require.Len(t, roots, 1)
	assert.Equal(t, "WebArea", roots[0].Role)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "heading", roots[0].Children[0].Role)
	assert.Equal(t, "Add to cart", roots[0].Children[1].Name)
}

func TestConvertAXNodes_MissingChildTolerated(t *testing.T) {
	t.Parallel()

	nodes := []*proto.AccessibilityAXNode{
		{
			NodeID:   "1",
			Role:     axValue("WebArea"),
			ChildIDs: []proto.AccessibilityAXNodeID{"99"},
		},
	}

	roots := convertAXNodes(nodes)

	require.Len(t, roots, 1)
	assert.Empty(t, roots[0].Children)
}

func TestAXValueString_Nil(t *testing.T) {
	t.Parallel()

	assert.Empty(t, axValueString(nil))
}
