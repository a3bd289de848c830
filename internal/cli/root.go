// Package cli wires cobra commands onto lgrep's core packages: one
// subcommand per indexer, query-engine, and daemon operation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var indexFlag string

// rootCmd is the base command when lgrep is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "lgrep",
	Short: "Local code-intelligence engine: index a repository and query it offline",
	Long: `lgrep indexes a codebase into a local vector+graph store and answers
structural and semantic queries against it: search, callers, impact,
dead code, cycles, rename preview, without calling out to any network
service other than the embedding provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and translates a returned error into an
// exit code (0 success, 1 user error, 2 operational failure, 130 on
// interrupt). It is called by cmd/lgrep's main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lgrep:", err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&indexFlag, "index", "", "index name (default: auto-detect from the current directory)")
}
