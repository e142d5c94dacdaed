package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/launchtree/internal/presentation/graph"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/serializer"
	"github.com/muesli/termenv"
)

var typeColors = map[string]string{
	"IncludeLaunchDescription": "#818cf8",
	"GroupAction":              "#a1a1aa",
	"Node":                     "#34d399",
	"ComposableNodeContainer":  "#fbbf24",
	"LoadComposableNodes":      "#f472b6",
}

// RenderTree writes doc as an indented tree followed by the diagnostics.
func RenderTree(w io.Writer, p termenv.Profile, doc *serializer.Node, diags []domain.Diagnostic) {
	if doc == nil {
		fmt.Fprintln(w, p.String("(empty)").Faint())
	} else {
		writeNode(w, p, *doc, "", "", true)
	}

	if len(diags) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.String(fmt.Sprintf("%d diagnostic(s)", len(diags))).Bold().Foreground(p.Color("#f87171")))
	for _, d := range diags {
		where := string(d.Family)
		if d.Source != "" {
			where += " in " + d.Source
		}
		fmt.Fprintf(w, "  %s %s: %s\n", p.String("!").Foreground(p.Color("#f87171")), where, d.Message)
	}
}

func writeNode(w io.Writer, p termenv.Profile, n serializer.Node, prefix, connector string, last bool) {
	kind := p.String(shortType(n.Type)).Foreground(p.Color(typeColors[n.Type]))
	fmt.Fprintf(w, "%s%s%s %s\n", prefix, connector, kind, graph.Label(n))

	childPrefix := prefix
	if connector != "" {
		if last {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, c := range n.Children {
		isLast := i == len(n.Children)-1
		conn := "├── "
		if isLast {
			conn = "└── "
		}
		writeNode(w, p, c, childPrefix, conn, isLast)
	}
}

func shortType(t string) string {
	switch t {
	case "IncludeLaunchDescription":
		return "[include]"
	case "GroupAction":
		return "[group]"
	case "Node":
		return "[node]"
	case "ComposableNodeContainer":
		return "[container]"
	case "LoadComposableNodes":
		return "[load]"
	default:
		return "[" + t + "]"
	}
}
