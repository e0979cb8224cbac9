// Package cmd provides the command-line interface for qtrace.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qtrace",
	Short: "qtrace traces query execution with cache-tier attribution.",
	Long: `qtrace traces query execution the way a database session trace ` +
		`does: SQL text, binds, timing, buffer statistics, and an estimate ` +
		`of which cache tier served each block read.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
