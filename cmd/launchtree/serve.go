package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/launchtree/internal/cli"
	"github.com/aretw0/launchtree/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves analyses over HTTP: POST /analyze, GET /arguments, GET /events (SSE),
plus /healthz, /info, /metrics and the OpenAPI document at /openapi.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, cli.Overrides{
			Addr:     stringFlag(cmd, "addr"),
			CacheDir: stringFlag(cmd, "cache-dir"),
			RedisURL: stringFlag(cmd, "redis-url"),
		})
		if err != nil {
			return err
		}
		env, err := cli.NewEnv(cfg, logger, true)
		if err != nil {
			return err
		}
		defer env.Close()

		ln, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}

		tui.PrintBanner(cmd.ErrOrStderr(), terminalOutput("", false).Profile)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Serve(ctx, env, ln, cfg.Server, cfg.Analyze.Debounce)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("cache-dir", "", "Cache results in this directory")
	serveCmd.Flags().String("redis-url", "", "Cache results in Redis, shared between instances")
}
