package main

import (
	"fmt"

	"github.com/aretw0/launchtree"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of launchtree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "launchtree version %s\n", launchtree.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
