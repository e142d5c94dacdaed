// Package presentation renders analyses in the output formats of the CLI and the MCP tools.
package presentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/launchtree"
	"github.com/aretw0/launchtree/internal/presentation/graph"
	"github.com/aretw0/launchtree/internal/presentation/tui"
	"github.com/aretw0/launchtree/pkg/serializer"
	"github.com/muesli/termenv"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTree     Format = "tree"
	FormatMermaid  Format = "mermaid"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatTree, FormatMermaid, FormatMarkdown}

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %v)", ErrUnknownFormat, s, Formats)
}

// Options tune rendering.
type Options struct {
	// Profile colors the tree format. The zero value is termenv.TrueColor; use
	// termenv.Ascii for plain text.
	Profile termenv.Profile
	// Styled renders markdown through glamour instead of emitting it raw.
	Styled bool
	// Width is the wrap width of styled markdown.
	Width int
	// Diff highlights changed nodes in the mermaid format.
	Diff *serializer.Diff
}

// Render writes res to w in format f.
func Render(w io.Writer, f Format, res *launchtree.Analysis, opts Options) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Tree)
	case FormatYAML:
		data, err := serializer.ToYAML(res.Tree)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatTree:
		tui.RenderTree(w, opts.Profile, &res.Tree, res.Diagnostics)
		return nil
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(res.Tree, graph.OverlayFromDiff(opts.Diff)))
		return err
	case FormatMarkdown:
		md := tui.Markdown(tui.Report{
			Title:       res.Invocation,
			Document:    &res.Tree,
			Sources:     res.Sources,
			Diagnostics: res.Diagnostics,
		})
		if opts.Styled {
			width := opts.Width
			if width <= 0 {
				width = 80
			}
			render, err := tui.NewRenderer(width, false)
			if err != nil {
				return err
			}
			if md, err = render(md); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, md)
		return err
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}
