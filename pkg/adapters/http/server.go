package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/launchtree"
	"github.com/aretw0/launchtree/internal/builder"
	"github.com/aretw0/launchtree/internal/command"
	"github.com/aretw0/launchtree/internal/discovery"
	"github.com/aretw0/launchtree/internal/logging"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger parses the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	return openapi3.NewLoader().LoadFromData(rawSpec)
}

// Analyzer defines the operations the API exposes.
type Analyzer interface {
	Analyze(ctx context.Context, invocation string) (*launchtree.Analysis, error)
	AnalyzeArgs(ctx context.Context, words []string) (*launchtree.Analysis, error)
	Arguments(ctx context.Context, path string) ([]launchtree.Argument, error)
	Watch(ctx context.Context, invocation string, debounce time.Duration, fn func(launchtree.Update)) error
}

var _ Analyzer = (*launchtree.Analyzer)(nil)

// Server serves the launchtree API.
type Server struct {
	Analyzer Analyzer
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	debounce time.Duration
	swagger  *openapi3.T
	router   routers.Router
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithGatherer exposes the metrics of g on GET /metrics.
// Without it, the default prometheus registry is served.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithDebounce sets the quiet period of the /events watcher.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		s.debounce = d
	}
}

// NewHandler creates the HTTP handler for an analyzer.
// Requests to documented operations are validated against the OpenAPI document.
func NewHandler(analyzer Analyzer, opts ...Option) (http.Handler, error) {
	server := &Server{
		Analyzer: analyzer,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(server)
	}

	swagger, err := GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	router, err := legacy.NewRouter(swagger)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	server.swagger, server.router = swagger, router

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(server.validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec) //nolint:errcheck
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML)) //nolint:errcheck
	})
	r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))

	r.Post("/analyze", server.Analyze)
	r.Get("/arguments", server.ListArguments)
	r.Get("/events", server.SubscribeEvents)
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)

	return enableCORS(r), nil
}

// validate rejects requests to documented operations that do not match the document.
// Undocumented paths (/metrics, /swagger) pass through.
func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := s.router.FindRoute(r)
		if err != nil || route == nil {
			next.ServeHTTP(w, r)
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options:    &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.Warn("request rejected", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusBadRequest, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>launchtree API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// AnalyzeRequest is the body of POST /analyze. Exactly one field must be set.
type AnalyzeRequest struct {
	Invocation string   `json:"invocation,omitempty"`
	Args       []string `json:"args,omitempty"`
}

// Analyze handles the POST /analyze request.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if (body.Invocation == "") == (len(body.Args) == 0) {
		writeError(w, http.StatusBadRequest, errors.New("exactly one of invocation and args is required"))
		return
	}

	var res *launchtree.Analysis
	var err error
	if body.Invocation != "" {
		res, err = s.Analyzer.Analyze(r.Context(), body.Invocation)
	} else {
		res, err = s.Analyzer.AnalyzeArgs(r.Context(), body.Args)
	}
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("analyze failed", "err", err)
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res, s.logger)
}

// ListArguments handles the GET /arguments request.
func (s *Server) ListArguments(w http.ResponseWriter, r *http.Request) {
	args, err := s.Analyzer.Arguments(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		status := statusOf(err)
		if errors.Is(err, domain.ErrSourceNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, args, s.logger)
}

// SubscribeEvents handles the GET /events request (SSE).
// Every analysis of the invocation is sent as one event; the first is sent
// immediately and the next ones whenever a launch file it read changes.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	invocation := r.URL.Query().Get("invocation")
	s.logger.Info("SSE: watching invocation", "invocation", invocation)
	err := s.Analyzer.Watch(r.Context(), invocation, s.debounce, func(u launchtree.Update) {
		event, payload := "analysis", any(u)
		if u.Err != nil {
			event, payload = "error", map[string]string{"error": u.Err.Error()}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error("SSE: encode update failed", "err", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	})
	if err != nil {
		fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
		flusher.Flush()
	}
	s.logger.Info("SSE client disconnected", "invocation", invocation)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.swagger.Info != nil {
		apiVersion = s.swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "launchtree-http",
		"version":     launchtree.Version,
		"api_version": apiVersion,
	}, s.logger)
}

// statusOf maps analysis errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, command.ErrMalformedInvocation),
		errors.Is(err, discovery.ErrPackageNotFound),
		errors.Is(err, discovery.ErrFragmentNotFound),
		errors.Is(err, discovery.ErrAmbiguousFragment):
		return http.StatusBadRequest
	case errors.Is(err, builder.ErrRootFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}) //nolint:errcheck
}
