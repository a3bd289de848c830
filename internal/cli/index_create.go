package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dennisonbertram/lgrep/internal/chunk"
	"github.com/dennisonbertram/lgrep/internal/config"
	"github.com/dennisonbertram/lgrep/internal/discover"
	"github.com/dennisonbertram/lgrep/internal/embed"
	"github.com/dennisonbertram/lgrep/internal/indexer"
	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Create or update a local index",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create [path]",
	Short: "Build a fresh index over a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndexCreate,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexCreateCmd)
}

func runIndexCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return lgerr.Wrap(lgerr.InvalidInput, "cli", "resolve root path", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return lgerr.New(lgerr.InvalidInput, "cli", fmt.Sprintf("%s is not a directory", absRoot))
	}

	name := indexFlag
	if name == "" {
		name = filepath.Base(absRoot)
	}

	lay, err := openLayout()
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(lay.IndexDBDir(name), "lgrep.db")); err == nil {
		return lgerr.New(lgerr.AlreadyExists, "cli", fmt.Sprintf("index %q already exists; use 'lgrep index update' or pass a different --index name", name))
	}

	cfg, err := loadConfig(lay)
	if err != nil {
		return err
	}

	provider, err := embedProviderFromEnv(cfg.Model)
	if err != nil {
		return err
	}
	defer provider.Close()

	dims, err := probeDimensions(ctx, provider)
	if err != nil {
		return err
	}

	cache, err := embed.OpenCache(filepath.Join(lay.CacheDir(), "embeddings.db"))
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "open embedding cache", err)
	}
	defer cache.Close()
	cachedProvider := embed.NewCachedProvider(provider, cache, cfg.Model)

	s, err := store.Open(lay.IndexDBDir(name), dims)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "open index store", err)
	}
	defer s.Close()

	if err := s.PutMetadata(store.IndexMetadata{
		Name:            name,
		RootPath:        absRoot,
		Model:           cfg.Model,
		ModelDimensions: dims,
		Status:          store.StatusBuilding,
	}); err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "write index metadata", err)
	}

	counters, err := runIndexPipeline(ctx, s, absRoot, cfg, cachedProvider)
	if err != nil {
		_ = s.SetStatus(store.StatusFailed)
		return err
	}

	printCounters("create", name, counters)
	return nil
}

// probeDimensions returns provider's vector width, making one EmbedQuery
// call to learn it when the provider doesn't already know (the http
// provider only learns its remote's dimensionality from a response; see
// internal/embed/http.go's Dimensions doc comment).
func probeDimensions(ctx context.Context, provider embed.Provider) (int, error) {
	if d := provider.Dimensions(); d > 0 {
		return d, nil
	}
	vec, err := provider.EmbedQuery(ctx, "lgrep dimension probe")
	if err != nil {
		return 0, lgerr.Wrap(lgerr.ProviderError, "cli", "probe embedding dimensions", err)
	}
	if len(vec) == 0 {
		return 0, lgerr.New(lgerr.ProviderError, "cli", "embedding provider returned an empty vector")
	}
	return len(vec), nil
}

// runIndexPipeline builds the discovery/parser/chunker front-end and runs
// one Indexer pass, shared by index create and index update.
func runIndexPipeline(ctx context.Context, s *store.Store, absRoot string, cfg *config.Config, provider embed.Provider) (indexer.Counters, error) {
	discovery, err := discover.New(discover.Config{
		Root:        absRoot,
		Excludes:    append(append([]string{}, cfg.Excludes...), cfg.SecretExcludes...),
		MaxFileSize: int64(cfg.MaxFileSize),
	})
	if err != nil {
		return indexer.Counters{}, lgerr.Wrap(lgerr.InvalidInput, "cli", "compile exclude patterns", err)
	}

	ix := indexer.New(indexer.Config{
		Store:     s,
		Discovery: discovery,
		Frontend:  parser.New(),
		Chunker: chunk.New(chunk.Config{
			Size:        cfg.ChunkSize,
			Overlap:     cfg.ChunkOverlap,
			MaxFileSize: cfg.MaxFileSize,
		}),
		Provider: provider,
		Model:    cfg.Model,
	})

	counters, err := ix.Run(ctx)
	if err != nil {
		return counters, lgerr.Wrap(lgerr.StoreError, "cli", "run indexer", err)
	}
	return counters, nil
}

func printCounters(mode, name string, c indexer.Counters) {
	fmt.Printf("%s %q: processed=%d added=%d updated=%d deleted=%d skipped=%d chunks=%d run=%s\n",
		mode, name, c.FilesProcessed, c.FilesAdded, c.FilesUpdated, c.FilesDeleted, c.FilesSkipped, c.ChunksCreated, c.RunID)
}
