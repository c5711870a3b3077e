package pagesense

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AXNode is one node of a typed accessibility tree. The tree is the internal
// representation; text rendering happens only at the completion-service
// boundary (RenderSnapshot).
type AXNode struct {
	// Index is the numeric reference assigned in depth-first traversal
	// order. Only nodes that render receive an index; others keep -1.
	Index int

	Role    string
	Name    string
	Value   string
	Ignored bool
	Depth   int

	Children []*AXNode
}

// ElementInfo is one indexed accessibility node recovered from a rendered
// snapshot. Indexes are unique within a snapshot and monotonically assigned
// in traversal order.
type ElementInfo struct {
	Index int               `json:"index"`
	Role  string            `json:"role"`
	Name  string            `json:"name"`
	Text  string            `json:"text,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Depth int               `json:"depth"`
}

// decorativeRoles are roles that carry no semantic content of their own.
// Nodes with these roles are skipped during rendering unless they carry a
// name, but their children are always descended into.
var decorativeRoles = map[string]bool{
	"none":             true,
	"presentation":     true,
	"generic":          true,
	"GenericContainer": true,
	"InlineTextBox":    true,
	"LineBreak":        true,
	"Ignored":          true,
}

// RenderSnapshot renders a typed accessibility tree as the depth-indented,
// numerically-indexed text form used by later pipeline stages and the
// completion service. Indexes are assigned to rendered nodes in a single
// depth-first traversal and written back onto the nodes, so the numeric
// reference scheme is stable for the capture.
func RenderSnapshot(roots []*AXNode) string {
	var sb strings.Builder
	next := 0
	for _, root := range roots {
		renderNode(&sb, root, 0, &next)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *AXNode, depth int, next *int) {
	if n == nil {
		return
	}
	n.Depth = depth
	skip := (n.Ignored || decorativeRoles[n.Role]) && n.Name == ""
	childDepth := depth
	if !skip {
		n.Index = *next
		*next++
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(sb, "[%d] %s: %q", n.Index, n.Role, n.Name)
		if n.Value != "" {
			fmt.Fprintf(sb, " (%s)", n.Value)
		}
		sb.WriteByte('\n')
		childDepth = depth + 1
	} else {
		n.Index = -1
	}
	for _, c := range n.Children {
		renderNode(sb, c, childDepth, next)
	}
}

// snapshotLine matches one rendered snapshot line:
//
//	[12] button: "Add to cart" (enabled)
var snapshotLine = regexp.MustCompile(`^(\s*)\[(\d+)\] ([^:]+): "((?:[^"\\]|\\.)*)"(?: \((.*)\))?$`)

// ParseSnapshot parses a rendered accessibility snapshot back into
// ElementInfo records keyed by index. Depth is recovered from indentation.
// Malformed lines are skipped, not fatal.
func ParseSnapshot(snapshot string) map[int]ElementInfo {
	elements := make(map[int]ElementInfo)
	for _, line := range strings.Split(snapshot, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := snapshotLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		name, err := strconv.Unquote(`"` + m[4] + `"`)
		if err != nil {
			name = m[4]
		}
		elements[index] = ElementInfo{
			Index: index,
			Role:  strings.TrimSpace(m[3]),
			Name:  name,
			Text:  m[5],
			Depth: len(m[1]) / 2,
		}
	}
	return elements
}
