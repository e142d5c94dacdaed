package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/launchtree"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/serializer"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, invocation string) (*launchtree.Analysis, error) {
	if invocation == "launch broken" {
		return nil, errors.New("malformed launch invocation")
	}
	return &launchtree.Analysis{
		RunID:      "run-1",
		Invocation: invocation,
		Tree: serializer.Node{
			Type:   "IncludeLaunchDescription",
			Fields: domain.Attributes{{Key: "path", Value: "/ws/demo.launch.xml"}},
			Children: []serializer.Node{
				{Type: "Node", Fields: domain.Attributes{
					{Key: "package", Value: "demo"},
					{Key: "executable", Value: "talker"},
				}},
			},
		},
		Diagnostics: []domain.Diagnostic{{Family: "Node", Message: "undefined variable"}},
	}, nil
}

func (stubAnalyzer) Arguments(_ context.Context, path string) ([]launchtree.Argument, error) {
	def := "r1"
	return []launchtree.Argument{{Name: "robot", Default: &def}}, nil
}

func newClient(t *testing.T) *client.Client {
	t.Helper()
	s := NewServer(stubAnalyzer{}, nil)
	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		ClientInfo:      mcp.Implementation{Name: "test", Version: "1"},
	}})
	require.NoError(t, err)
	return c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult, i int) string {
	t.Helper()
	require.Greater(t, len(res.Content), i)
	tc, ok := mcp.AsTextContent(res.Content[i])
	require.True(t, ok)
	return tc.Text
}

func TestListTools(t *testing.T) {
	c := newClient(t)
	tools, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_launch", "list_arguments"}, names)
}

func TestAnalyzeLaunch(t *testing.T) {
	c := newClient(t)

	res := callTool(t, c, "analyze_launch", map[string]any{"invocation": "launch /ws/demo.launch.xml"})
	require.False(t, res.IsError)

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res, 0)), &tree))
	assert.Equal(t, "IncludeLaunchDescription", tree["type"])
	assert.Contains(t, text(t, res, 1), "undefined variable")

	t.Run("mermaid", func(t *testing.T) {
		res := callTool(t, c, "analyze_launch", map[string]any{"invocation": "launch /ws/demo.launch.xml", "format": "mermaid"})
		require.False(t, res.IsError)
		assert.Contains(t, text(t, res, 0), "graph TD")
	})

	t.Run("bad format", func(t *testing.T) {
		res := callTool(t, c, "analyze_launch", map[string]any{"invocation": "launch x", "format": "dot"})
		assert.True(t, res.IsError)
	})

	t.Run("analysis error", func(t *testing.T) {
		res := callTool(t, c, "analyze_launch", map[string]any{"invocation": "launch broken"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res, 0), "malformed launch invocation")
	})
}

func TestLastAnalysisResource(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	req := mcp.ReadResourceRequest{}
	req.Params.URI = lastAnalysisURI
	_, err := c.ReadResource(ctx, req)
	assert.Error(t, err, "nothing analyzed yet")

	callTool(t, c, "analyze_launch", map[string]any{"invocation": "launch /ws/demo.launch.xml"})

	out, err := c.ReadResource(ctx, req)
	require.NoError(t, err)
	require.Len(t, out.Contents, 1)
	rc, ok := mcp.AsTextResourceContents(out.Contents[0])
	require.True(t, ok)

	var got launchtree.Analysis
	require.NoError(t, json.Unmarshal([]byte(rc.Text), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "IncludeLaunchDescription", got.Tree.Type)
}

func TestListArguments(t *testing.T) {
	c := newClient(t)
	res := callTool(t, c, "list_arguments", map[string]any{"path": "/ws/demo.launch.xml"})
	require.False(t, res.IsError)

	var got ArgumentsResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res, 0)), &got))
	assert.Equal(t, "/ws/demo.launch.xml", got.Path)
	require.Len(t, got.Arguments, 1)
	assert.Equal(t, "robot", got.Arguments[0].Name)
	assert.Equal(t, "r1", *got.Arguments[0].Default)
}
