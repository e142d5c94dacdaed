package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/launchtree/pkg/serializer"
)

// Overlay marks nodes to highlight, by serializer path (see serializer.Diff).
type Overlay struct {
	Added   []string
	Changed []string
}

// OverlayFromDiff highlights the nodes added or changed by d.
func OverlayFromDiff(d *serializer.Diff) *Overlay {
	if d == nil {
		return nil
	}
	return &Overlay{Added: d.Added, Changed: d.Changed}
}

// GenerateMermaid produces a Mermaid flowchart of a launch tree.
// Shapes follow the node type:
// - Include: [[Subroutine]]
// - Group: [Rectangle]
// - Node: ([Stadium])
// - Container: {{Hexagon}}
// - Load: [/Parallelogram/]
func GenerateMermaid(doc serializer.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string]string)
	parents := []string{}
	doc.WalkPaths(func(path string, n serializer.Node, depth int) {
		id := fmt.Sprintf("n%d", len(ids))
		ids[path] = id

		opener, closer := "[", "]"
		switch n.Type {
		case "IncludeLaunchDescription":
			opener, closer = "[[", "]]"
		case "Node":
			opener, closer = "([", "])"
		case "ComposableNodeContainer":
			opener, closer = "{{", "}}"
		case "LoadComposableNodes":
			opener, closer = "[/", "/]"
		}
		label := strings.ReplaceAll(Label(n), "\"", "'")
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))

		parents = append(parents[:depth], id)
		if depth > 0 {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", parents[depth-1], id))
		}
	})

	if overlay != nil && (len(overlay.Added) > 0 || len(overlay.Changed) > 0) {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills whatever the theme.
		sb.WriteString("    classDef added fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef changed fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, ids, overlay.Added, "added")
		writeClass(&sb, ids, overlay.Changed, "changed")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids map[string]string, paths []string, class string) {
	seen := make(map[string]bool)
	for _, p := range paths {
		id, ok := ids[p]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", id, class))
	}
}
