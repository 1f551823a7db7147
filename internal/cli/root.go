// Package cli implements the bindlike command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bindlike",
	Short: "Local host for capability-bound compute units",
	Long:  "Runs wasm compute units against a configured binding environment.\nBindings resolve to typed capability handles; mTLS-backed fetchers\npresent a client certificate on every upstream call.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
