// Package commands provides the CLI commands for the matchc demo tool.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matchc",
	Short: "Pattern-matching compiler demo",
	Long: `matchc compiles pattern-match expressions against a small, fixed
type oracle and prints the generated Go source.

Usage:
  matchc demo list              List the available pattern fixtures
  matchc demo run <name>        Compile one fixture and print the result
  matchc version                Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(versionCmd)
}
