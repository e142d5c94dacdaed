package main

import (
	"github.com/aretw0/launchtree/internal/cli"
	"github.com/spf13/cobra"
)

var argsCmd = &cobra.Command{
	Use:   "args <file>",
	Short: "List the arguments a launch file declares",
	Long: `Lists the launch arguments declared by one launch file, with their defaults and
choices. Included files are not followed. Arguments declared under a condition are
marked as conditional.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, cli.Overrides{})
		if err != nil {
			return err
		}
		env, err := cli.NewEnv(cfg, logger, false)
		if err != nil {
			return err
		}
		defer env.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.RunArgs(cmd.Context(), env.Analyzer, cmd.OutOrStdout(), args[0], asJSON)
	},
}

func init() {
	rootCmd.AddCommand(argsCmd)
	argsCmd.Flags().Bool("json", false, "Print the arguments as JSON")
}
