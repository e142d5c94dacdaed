package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/launchtree/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts launchtree as an MCP server, exposing the analyze_launch and list_arguments tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, cli.Overrides{
			Transport: stringFlag(cmd, "transport"),
			Port:      intFlag(cmd, "port"),
			CacheDir:  stringFlag(cmd, "cache-dir"),
		})
		if err != nil {
			return err
		}
		env, err := cli.NewEnv(cfg, logger, false)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = cli.ServeMCP(ctx, env, cfg.MCP, cfg.Server.ShutdownTimeout)
		if err == nil {
			logger.Info("MCP server stopped gracefully")
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("cache-dir", "", "Cache results in this directory")
}
