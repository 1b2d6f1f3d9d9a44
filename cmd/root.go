// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "merge-champ",
	Short: "A CLI tool to track and celebrate team merge request activity.",
	Long: `merge-champ aggregates merged merge requests for a configured team
over weekly and monthly windows, computes summary statistics (raw or
size-weighted), and renders the results to the console or a Microsoft
Teams webhook.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
