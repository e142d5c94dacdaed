package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/launchtree"
	"github.com/aretw0/launchtree/internal/logging"
	"github.com/aretw0/launchtree/internal/presentation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const lastAnalysisURI = "launchtree://analysis/last"

// Analyzer defines the operations the MCP server exposes.
type Analyzer interface {
	Analyze(ctx context.Context, invocation string) (*launchtree.Analysis, error)
	Arguments(ctx context.Context, path string) ([]launchtree.Argument, error)
}

// AnalyzeParams are the arguments of the analyze_launch tool.
type AnalyzeParams struct {
	Invocation string `json:"invocation"`
	Format     string `json:"format,omitempty"`
}

// ArgumentsParams are the arguments of the list_arguments tool.
type ArgumentsParams struct {
	Path string `json:"path"`
}

// ArgumentsResponse is the structured result of the list_arguments tool.
type ArgumentsResponse struct {
	Path      string                `json:"path" jsonschema_description:"The launch file"`
	Arguments []launchtree.Argument `json:"arguments" jsonschema_description:"Declared arguments in document order"`
}

// Server exposes an Analyzer as an MCP server.
type Server struct {
	analyzer  Analyzer
	logger    *slog.Logger
	mcpServer *server.MCPServer

	mu   sync.Mutex
	last []byte
}

// NewServer creates a new MCP Server instance.
func NewServer(analyzer Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		analyzer: analyzer,
		logger:   logger,
		mcpServer: server.NewMCPServer("launchtree-mcp", launchtree.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int, shutdownTimeout time.Duration) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	formats := make([]string, len(presentation.Formats))
	for i, f := range presentation.Formats {
		formats[i] = string(f)
	}

	// TOOL: analyze_launch
	analyzeTool := mcp.NewTool("analyze_launch",
		mcp.WithDescription("Build the normalized tree of what a launch invocation would run, with conditions and substitutions resolved. Nothing is executed."),
		mcp.WithString("invocation", mcp.Required(),
			mcp.Description(`Launch invocation, e.g. "ros2 launch demo robot.launch.xml use_sim:=true" or "launch /path/to/file.launch.xml"`)),
		mcp.WithString("format", mcp.Enum(formats...), mcp.DefaultString(string(presentation.FormatJSON)),
			mcp.Description("Output format")),
	)
	s.mcpServer.AddTool(analyzeTool, mcp.NewTypedToolHandler(s.handleAnalyze))

	// TOOL: list_arguments
	argumentsTool := mcp.NewTool("list_arguments",
		mcp.WithDescription("List the launch arguments a launch file declares, with defaults and choices. Included files are not followed."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the launch file")),
		mcp.WithOutputSchema[ArgumentsResponse](),
	)
	s.mcpServer.AddTool(argumentsTool, mcp.NewStructuredToolHandler(s.handleArguments))
}

func (s *Server) handleAnalyze(ctx context.Context, _ mcp.CallToolRequest, args AnalyzeParams) (*mcp.CallToolResult, error) {
	format := presentation.FormatJSON
	if args.Format != "" {
		f, err := presentation.ParseFormat(args.Format)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format = f
	}

	res, err := s.analyzer.Analyze(ctx, args.Invocation)
	if err != nil {
		s.logger.Warn("MCP analyze failed", "invocation", args.Invocation, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("analyze failed: %v", err)), nil
	}

	full, err := json.Marshal(res)
	if err == nil {
		s.mu.Lock()
		s.last = full
		s.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := presentation.Render(&buf, format, res, presentation.Options{}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	result := mcp.NewToolResultText(buf.String())
	if len(res.Diagnostics) > 0 {
		diags, _ := json.Marshal(res.Diagnostics)
		result.Content = append(result.Content, mcp.NewTextContent("diagnostics: "+string(diags)))
	}
	return result, nil
}

func (s *Server) handleArguments(ctx context.Context, _ mcp.CallToolRequest, args ArgumentsParams) (ArgumentsResponse, error) {
	list, err := s.analyzer.Arguments(ctx, args.Path)
	if err != nil {
		return ArgumentsResponse{}, fmt.Errorf("list arguments: %w", err)
	}
	if list == nil {
		list = []launchtree.Argument{}
	}
	return ArgumentsResponse{Path: args.Path, Arguments: list}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: launchtree://analysis/last
	s.mcpServer.AddResource(mcp.NewResource(lastAnalysisURI, "Last analysis",
		mcp.WithResourceDescription("The full result of the most recent analyze_launch call"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		s.mu.Lock()
		last := s.last
		s.mu.Unlock()
		if last == nil {
			return nil, errors.New("no analysis has run yet")
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      lastAnalysisURI,
				MIMEType: "application/json",
				Text:     string(last),
			},
		}, nil
	})
}
