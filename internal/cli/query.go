package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/dennisonbertram/lgrep/internal/query"
	"github.com/spf13/cobra"
)

// searchCmd, callersCmd, and the rest of the query family share this
// file: each is a thin cobra wrapper that resolves the index, opens a
// read-only Engine and prints JSON, mirroring the `search`/`callers`/
// etc. JSON-RPC methods one for one.

var (
	searchLimit     int
	searchDiversity float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Hybrid semantic search over indexed chunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var callersCmd = &cobra.Command{
	Use:   "callers <symbol>",
	Short: "List call edges whose callee resolves to symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runCallers,
}

var impactCmd = &cobra.Command{
	Use:   "impact <symbol>",
	Short: "Change-impact analysis: direct callers plus transitive importers",
	Args:  cobra.ExactArgs(1),
	RunE:  runImpact,
}

var deadKind string
var deadCmd = &cobra.Command{
	Use:   "dead",
	Short: "List functions/methods with zero incoming calls",
	Args:  cobra.NoArgs,
	RunE:  runDead,
}

var unusedExportsCmd = &cobra.Command{
	Use:   "unused-exports",
	Short: "List exported symbols with no consumer",
	Args:  cobra.NoArgs,
	RunE:  runUnusedExports,
}

var cyclesIncludeExternal bool
var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Detect circular file dependencies",
	Args:  cobra.NoArgs,
	RunE:  runCycles,
}

var similarLimit int
var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Cluster near-duplicate chunks by cosine similarity",
	Args:  cobra.NoArgs,
	RunE:  runSimilar,
}

var renamePreviewOnly bool
var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Preview a symbol rename without touching the working tree",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

var (
	symbolsKind     string
	symbolsFile     string
	symbolsExported string
)
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List symbols, optionally filtered by kind/file/exported",
	Args:  cobra.NoArgs,
	RunE:  runSymbols,
}

var depsFile string
var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "List the dependencies declared by a file",
	Args:  cobra.NoArgs,
	RunE:  runDeps,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize one index's table counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	searchCmd.Flags().Float64Var(&searchDiversity, "diversity", 0, "MMR diversity in [0,1]; 0 disables diversification")
	rootCmd.AddCommand(searchCmd)

	rootCmd.AddCommand(callersCmd)
	rootCmd.AddCommand(impactCmd)

	deadCmd.Flags().StringVar(&deadKind, "kind", "", "restrict to one symbol kind (function or method)")
	rootCmd.AddCommand(deadCmd)

	rootCmd.AddCommand(unusedExportsCmd)

	cyclesCmd.Flags().BoolVar(&cyclesIncludeExternal, "include-external", false, "include external (node_modules-style) dependency edges")
	rootCmd.AddCommand(cyclesCmd)

	similarCmd.Flags().IntVar(&similarLimit, "limit", 20, "maximum clusters")
	rootCmd.AddCommand(similarCmd)

	renameCmd.Flags().BoolVar(&renamePreviewOnly, "preview", true, "preview only; the core never writes files regardless of this flag")
	rootCmd.AddCommand(renameCmd)

	symbolsCmd.Flags().StringVar(&symbolsKind, "kind", "", "filter by symbol kind")
	symbolsCmd.Flags().StringVar(&symbolsFile, "file", "", "filter by absolute file path")
	symbolsCmd.Flags().StringVar(&symbolsExported, "exported", "", "\"true\" or \"false\" to filter by export status")
	rootCmd.AddCommand(symbolsCmd)

	depsCmd.Flags().StringVar(&depsFile, "file", "", "absolute path of the file to list dependencies for")
	rootCmd.AddCommand(depsCmd)

	rootCmd.AddCommand(statsCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return lgerr.Wrap(lgerr.InvalidInput, "cli", "encode result", err)
	}
	return nil
}

// openQueryEngine is the common read-only-query preamble shared by every
// command in this file: resolve the index, open its store and an Engine,
// and leave the caller responsible for e.Close()/s.Close().
func openQueryEngine(needsProvider bool) (*query.Engine, func(), error) {
	lay, err := openLayout()
	if err != nil {
		return nil, nil, err
	}
	name, err := resolveIndexName(lay)
	if err != nil {
		return nil, nil, err
	}
	s, e, err := openEngineReadOnly(lay, name, needsProvider)
	if err != nil {
		return nil, nil, err
	}
	return e, func() { e.Close(); s.Close() }, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	e, closeFn, err := openQueryEngine(true)
	if err != nil {
		return err
	}
	defer closeFn()

	results, err := e.Search(ctx, args[0], searchLimit, searchDiversity)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "search", err)
	}
	return printJSON(results)
}

func runCallers(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	edges, err := e.Callers(args[0])
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "callers", err)
	}
	return printJSON(edges)
}

func runImpact(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := e.Impact(args[0])
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "impact", err)
	}
	return printJSON(result)
}

func runDead(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	syms, err := e.Dead(deadKind)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "dead", err)
	}
	return printJSON(syms)
}

func runUnusedExports(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	syms, err := e.UnusedExports()
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "unused-exports", err)
	}
	return printJSON(syms)
}

func runCycles(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	cycles, err := e.Cycles(cyclesIncludeExternal)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "cycles", err)
	}
	return printJSON(cycles)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	clusters, err := e.Similar(similarLimit)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "similar", err)
	}
	return printJSON(clusters)
}

func runRename(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	edits, err := e.RenamePreview(args[0], args[1], renamePreviewOnly)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "rename", err)
	}
	return printJSON(edits)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	filter := query.SymbolFilter{Kind: symbolsKind, File: symbolsFile}
	switch symbolsExported {
	case "true":
		v := true
		filter.Exported = &v
	case "false":
		v := false
		filter.Exported = &v
	case "":
	default:
		return lgerr.New(lgerr.InvalidInput, "cli", "--exported must be \"true\" or \"false\"")
	}

	syms, err := e.Symbols(filter)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "symbols", err)
	}
	return printJSON(syms)
}

func runDeps(cmd *cobra.Command, args []string) error {
	if depsFile == "" {
		return lgerr.New(lgerr.InvalidInput, "cli", "--file is required")
	}
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	deps, err := e.Deps(depsFile)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "deps", err)
	}
	return printJSON(deps)
}

func runStats(cmd *cobra.Command, args []string) error {
	e, closeFn, err := openQueryEngine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := e.Stats()
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "stats", err)
	}
	return printJSON(stats)
}
