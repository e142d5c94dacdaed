package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/launchtree/internal/config"
	httpAdapter "github.com/aretw0/launchtree/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/launchtree/pkg/adapters/mcp"
	"golang.org/x/sync/errgroup"
)

// Serve runs the HTTP API on ln until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, env *Env, ln net.Listener, cfg config.Server, debounce time.Duration) error {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(env.Logger),
		httpAdapter.WithDebounce(debounce),
	}
	if env.Registry != nil {
		opts = append(opts, httpAdapter.WithGatherer(env.Registry))
	}
	handler, err := httpAdapter.NewHandler(env.Analyzer, opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		env.Logger.Info("HTTP server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		env.Logger.Info("start shutdown", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			env.Logger.Warn("graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		env.Logger.Info("HTTP server stopped gracefully")
		return nil
	})
	return g.Wait()
}

// ServeMCP runs the MCP server over the configured transport.
func ServeMCP(ctx context.Context, env *Env, cfg config.MCP, shutdownTimeout time.Duration) error {
	srv := mcpAdapter.NewServer(env.Analyzer, env.Logger)
	switch cfg.Transport {
	case "stdio":
		env.Logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		env.Logger.Info("starting MCP server (SSE)", "port", cfg.Port)
		return srv.ServeSSE(ctx, cfg.Port, shutdownTimeout)
	default:
		return fmt.Errorf("unknown transport %q, expected stdio or sse", cfg.Transport)
	}
}
