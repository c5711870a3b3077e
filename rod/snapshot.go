package rod

import (
	"github.com/fwojciec/pagesense"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// buildAXTree fetches the full accessibility tree over CDP and converts the
// flat node list into the typed tree the rest of the pipeline works with.
func buildAXTree(page *rod.Page) ([]*pagesense.AXNode, error) {
	res, err := proto.AccessibilityGetFullAXTree{}.Call(page)
	if err != nil {
		return nil, err
	}
	return convertAXNodes(res.Nodes), nil
}

// convertAXNodes links flat CDP nodes into a tree, preserving protocol
// order. Nodes referenced as children of other nodes are not roots.
func convertAXNodes(nodes []*proto.AccessibilityAXNode) []*pagesense.AXNode {
	byID := make(map[proto.AccessibilityAXNodeID]*pagesense.AXNode, len(nodes))
	for _, n := range nodes {
		byID[n.NodeID] = &pagesense.AXNode{
			Index:   -1,
			Role:    axValueString(n.Role),
			Name:    axValueString(n.Name),
			Value:   axValueString(n.Value),
			Ignored: n.Ignored,
		}
	}

	isChild := make(map[proto.AccessibilityAXNodeID]bool, len(nodes))
	for _, n := range nodes {
		parent := byID[n.NodeID]
		for _, cid := range n.ChildIDs {
			isChild[cid] = true
			if child, ok := byID[cid]; ok {
				parent.Children = append(parent.Children, child)
			}
		}
	}

	var roots []*pagesense.AXNode
	for _, n := range nodes {
		if !isChild[n.NodeID] {
			roots = append(roots, byID[n.NodeID])
		}
	}
	return roots
}

func axValueString(v *proto.AccessibilityAXValue) string {
	if v == nil {
		return ""
	}
	return v.Value.Str()
}
