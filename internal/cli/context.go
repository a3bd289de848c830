package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/dennisonbertram/lgrep/internal/query"
	"github.com/spf13/cobra"
)

var (
	contextFileLimit  int
	contextMaxTokens  int
	contextGraphDepth int
)

// contextCmd assembles a token-bounded bundle of source snippets for a
// question: search seeds the file set, the dependency graph expands it,
// and the configured limits cap what is returned.
var contextCmd = &cobra.Command{
	Use:   "context <question...>",
	Short: "Assemble LLM-ready context for a question from search hits and their dependency neighborhood",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContext,
}

func init() {
	contextCmd.Flags().IntVar(&contextFileLimit, "file-limit", 0, "maximum files included (default from config)")
	contextCmd.Flags().IntVar(&contextMaxTokens, "max-tokens", 0, "token budget across all snippets (default from config)")
	contextCmd.Flags().IntVar(&contextGraphDepth, "graph-depth", -1, "dependency-graph expansion depth (default from config)")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lay, err := openLayout()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(lay)
	if err != nil {
		return err
	}
	name, err := resolveIndexName(lay)
	if err != nil {
		return err
	}
	s, e, err := openEngineReadOnly(lay, name, true)
	if err != nil {
		return err
	}
	defer s.Close()
	defer e.Close()

	opts := query.ContextOptions{
		FileLimit:  cfg.ContextFileLimit,
		MaxTokens:  cfg.ContextMaxTokens,
		GraphDepth: cfg.ContextGraphDepth,
	}
	if contextFileLimit > 0 {
		opts.FileLimit = contextFileLimit
	}
	if contextMaxTokens > 0 {
		opts.MaxTokens = contextMaxTokens
	}
	if contextGraphDepth >= 0 {
		opts.GraphDepth = contextGraphDepth
	}

	result, err := e.AssembleContext(ctx, strings.Join(args, " "), opts)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "assemble context", err)
	}
	return printJSON(result)
}
