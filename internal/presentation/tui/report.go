package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/launchtree/internal/presentation/graph"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/serializer"
)

// Report is the input of Markdown.
type Report struct {
	Title       string
	Document    *serializer.Node
	Sources     []domain.SourceStamp
	Diagnostics []domain.Diagnostic
}

// Markdown renders a summary of an analysis: the launch files read,
// every executable with its namespace, and the diagnostics.
func Markdown(r Report) string {
	var sb strings.Builder
	title := r.Title
	if title == "" {
		title = "Launch analysis"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("## Sources\n\n")
	if len(r.Sources) == 0 {
		sb.WriteString("_none_\n")
	}
	for _, s := range r.Sources {
		fmt.Fprintf(&sb, "- `%s`\n", s.Path)
	}

	sb.WriteString("\n## Nodes\n\n")
	rows := 0
	if r.Document != nil {
		r.Document.Walk(func(n serializer.Node, _ int) {
			if n.Type != "Node" && n.Type != "ComposableNodeContainer" {
				return
			}
			if rows == 0 {
				sb.WriteString("| Type | Node | Package | Executable |\n")
				sb.WriteString("|------|------|---------|------------|\n")
			}
			rows++
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", n.Type, cell(graph.Label(n)), cell(n.Fields.String("package")), cell(n.Fields.String("executable")))
		})
	}
	if rows == 0 {
		sb.WriteString("_none_\n")
	}

	if len(r.Diagnostics) > 0 {
		sb.WriteString("\n## Diagnostics\n\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&sb, "- **%s**", d.Family)
			if d.Source != "" {
				fmt.Fprintf(&sb, " (`%s`)", d.Source)
			}
			fmt.Fprintf(&sb, ": %s\n", d.Message)
		}
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
