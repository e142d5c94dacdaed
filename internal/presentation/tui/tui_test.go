package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/launchtree/internal/presentation/tui"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/serializer"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc() *serializer.Node {
	return &serializer.Node{
		Type:   "IncludeLaunchDescription",
		Fields: domain.Attributes{{Key: "path", Value: "/ws/demo.launch.xml"}, {Key: "package", Value: nil}},
		Children: []serializer.Node{
			{
				Type:   "GroupAction",
				Fields: domain.Attributes{{Key: "scoped", Value: true}},
				Children: []serializer.Node{
					{Type: "Node", Fields: domain.Attributes{
						{Key: "package", Value: "demo"},
						{Key: "executable", Value: "talker"},
						{Key: "name", Value: "talker"},
						{Key: "namespace", Value: "/robot"},
					}},
				},
			},
			{Type: "Node", Fields: domain.Attributes{
				{Key: "package", Value: "demo"},
				{Key: "executable", Value: "listener"},
				{Key: "namespace", Value: "/"},
			}},
		},
	}
}

func TestRenderTree(t *testing.T) {
	var buf bytes.Buffer
	tui.RenderTree(&buf, termenv.Ascii, doc(), []domain.Diagnostic{
		{Family: "Node", Source: "/ws/bad.launch.xml", Depth: 2, Message: "unknown substitution"},
	})

	want := strings.Join([]string{
		"[include] include /ws/demo.launch.xml",
		"├── [group] group",
		"│   └── [node] /robot/talker (demo/talker)",
		"└── [node] demo/listener",
		"",
		"1 diagnostic(s)",
		"  ! Node in /ws/bad.launch.xml: unknown substitution",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRenderTree_Empty(t *testing.T) {
	var buf bytes.Buffer
	tui.RenderTree(&buf, termenv.Ascii, nil, nil)
	assert.Equal(t, "(empty)\n", buf.String())
}

func TestMarkdown(t *testing.T) {
	md := tui.Markdown(tui.Report{
		Document:    doc(),
		Sources:     []domain.SourceStamp{{Path: "/ws/demo.launch.xml"}},
		Diagnostics: []domain.Diagnostic{{Family: "IncludeLaunchDescription", Message: "not found"}},
	})

	assert.Contains(t, md, "# Launch analysis")
	assert.Contains(t, md, "- `/ws/demo.launch.xml`")
	assert.Contains(t, md, "| Node | /robot/talker (demo/talker) | demo | talker |")
	assert.Contains(t, md, "| Node | demo/listener | demo | listener |")
	assert.Contains(t, md, "- **IncludeLaunchDescription**: not found")
}

func TestMarkdown_NoNodes(t *testing.T) {
	md := tui.Markdown(tui.Report{Title: "Empty"})
	assert.Contains(t, md, "# Empty")
	assert.Equal(t, 2, strings.Count(md, "_none_"))
	assert.NotContains(t, md, "Diagnostics")
}

func TestNewRenderer_Plain(t *testing.T) {
	render, err := tui.NewRenderer(80, true)
	require.NoError(t, err)

	out, err := render("# Title\n\nSome *text*.")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), "|_|\\__,_|")
	assert.NotContains(t, buf.String(), "\x1b[")
}
