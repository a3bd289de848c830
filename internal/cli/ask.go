package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dennisonbertram/lgrep/internal/intent"
	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/spf13/cobra"
)

// askCmd accepts a natural-language request, classifies it with
// internal/intent, and dispatches to the matching query operation, so
// `lgrep ask "what calls awardBadge"` behaves like `lgrep callers
// awardBadge`.
var askCmd = &cobra.Command{
	Use:   "ask <request...>",
	Short: "Answer a natural-language request by routing it to the right query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	parsed := intent.Parse(strings.Join(args, " "))

	needsProvider := parsed.Command == intent.CommandSearch
	e, closeFn, err := openQueryEngine(needsProvider)
	if err != nil {
		return err
	}
	defer closeFn()

	var result any
	switch parsed.Command {
	case intent.CommandCallers:
		result, err = e.Callers(parsed.Args[0])
	case intent.CommandImpact:
		result, err = e.Impact(parsed.Args[0])
	case intent.CommandRename:
		result, err = e.RenamePreview(parsed.Args[0], parsed.Args[1], true)
	case intent.CommandDead:
		result, err = e.Dead("")
	case intent.CommandUnusedExports:
		result, err = e.UnusedExports()
	case intent.CommandCycles:
		result, err = e.Cycles(false)
	case intent.CommandSimilar:
		result, err = e.Similar(0)
	default:
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		result, err = e.Search(ctx, parsed.Args[0], 10, 0)
	}
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", string(parsed.Command), err)
	}
	return printJSON(map[string]any{"command": parsed.Command, "args": parsed.Args, "result": result})
}
