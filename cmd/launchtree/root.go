package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/launchtree/internal/cli"
	"github.com/aretw0/launchtree/internal/config"
	"github.com/aretw0/launchtree/internal/presentation"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "launchtree",
	Short: "launchtree shows what a launch invocation would run",
	Long: `launchtree reads a launch invocation, follows every include, evaluates conditions
and substitutions, and prints the normalized tree of groups, nodes and containers
it would start. Nothing is executed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./.launchtree.yaml, then $XDG_CONFIG_HOME/launchtree/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// setup loads the config with the command's flags applied and builds the logger.
func setup(cmd *cobra.Command, o cli.Overrides) (*config.Config, *slog.Logger, error) {
	o.LogLevel = stringFlag(cmd, "log-level")
	o.LogFormat = stringFlag(cmd, "log-format")
	path, _ := cmd.Flags().GetString("config")

	cfg, used, err := cli.LoadConfig(path, o)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	if used != "" {
		logger.Debug("config loaded", "file", used)
	}
	return cfg, logger, nil
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// terminalOutput colors and styles output only when stdout is a terminal.
func terminalOutput(format presentation.Format, noColor bool) cli.Output {
	out := cli.Output{Format: format, Profile: termenv.Ascii}
	fd := int(os.Stdout.Fd())
	if noColor || !term.IsTerminal(fd) {
		return out
	}
	out.Profile = termenv.EnvColorProfile()
	out.Styled = out.Profile != termenv.Ascii
	if w, _, err := term.GetSize(fd); err == nil {
		out.Width = w
	}
	return out
}
