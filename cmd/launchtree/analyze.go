package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/launchtree/internal/cli"
	"github.com/aretw0/launchtree/internal/presentation"
	"github.com/aretw0/launchtree/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <invocation...>",
	Short: "Print the normalized tree of a launch invocation",
	Long: `Builds the tree of what a launch invocation would run and prints it.

The invocation is either the words after "ros2 launch" (package and file, or a path,
followed by name:=value arguments) or the whole command line as one quoted argument.
Entities that fail to evaluate are dropped and reported as diagnostics.`,
	Example: `  launchtree analyze demo_nodes robot.launch.xml use_sim:=true
  launchtree analyze "ros2 launch demo_nodes robot.launch.xml" --format tree
  launchtree analyze ./bringup.launch.yaml --watch --format mermaid`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, cli.Overrides{
			Format:   stringFlag(cmd, "format"),
			Generic:  boolFlag(cmd, "generic"),
			MaxDepth: intFlag(cmd, "max-depth"),
			CacheDir: stringFlag(cmd, "cache-dir"),
			RedisURL: stringFlag(cmd, "redis-url"),
		})
		if err != nil {
			return err
		}
		format, err := presentation.ParseFormat(cfg.Analyze.Format)
		if err != nil {
			return err
		}

		env, err := cli.NewEnv(cfg, logger, false)
		if err != nil {
			return err
		}
		defer env.Close()

		noColor, _ := cmd.Flags().GetBool("no-color")
		out := terminalOutput(format, noColor)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			tui.PrintBanner(cmd.ErrOrStderr(), out.Profile)
			return cli.RunWatch(ctx, env.Analyzer, cmd.OutOrStdout(), cmd.ErrOrStderr(), args, cfg.Analyze.Debounce, out)
		}
		return cli.RunAnalyze(ctx, env.Analyzer, cmd.OutOrStdout(), args, out)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml, tree, mermaid or markdown")
	analyzeCmd.Flags().Bool("generic", false, "Expand every entity and let the normalizer drop what does not belong")
	analyzeCmd.Flags().Int("max-depth", 64, "Maximum nesting depth of includes and groups")
	analyzeCmd.Flags().BoolP("watch", "w", false, "Re-analyze whenever a launch file read by the invocation changes")
	analyzeCmd.Flags().String("cache-dir", "", "Cache results in this directory")
	analyzeCmd.Flags().String("redis-url", "", "Cache results in Redis (e.g. redis://localhost:6379/0)")
	analyzeCmd.Flags().Bool("no-color", false, "Disable colors and markdown styling")
}
