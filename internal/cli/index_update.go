package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dennisonbertram/lgrep/internal/embed"
	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/dennisonbertram/lgrep/internal/store"
	"github.com/spf13/cobra"
)

var indexUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Incrementally reindex a previously-created index",
	Args:  cobra.NoArgs,
	RunE:  runIndexUpdate,
}

func init() {
	indexCmd.AddCommand(indexUpdateCmd)
}

func runIndexUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lay, err := openLayout()
	if err != nil {
		return err
	}
	name, err := resolveIndexName(lay)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(lay)
	if err != nil {
		return err
	}

	s, err := openStore(lay, name)
	if err != nil {
		return err
	}
	defer s.Close()

	meta, err := s.Metadata()
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "read index metadata", err)
	}
	if meta == nil {
		return lgerr.New(lgerr.NotFound, "cli", fmt.Sprintf("index %q has never been built; run 'lgrep index create' first", name))
	}

	provider, err := embedProviderFromEnv(meta.Model)
	if err != nil {
		return err
	}
	defer provider.Close()

	cache, err := embed.OpenCache(filepath.Join(lay.CacheDir(), "embeddings.db"))
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "open embedding cache", err)
	}
	defer cache.Close()
	cachedProvider := embed.NewCachedProvider(provider, cache, meta.Model)

	if err := s.SetStatus(store.StatusBuilding); err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "mark index building", err)
	}

	counters, err := runIndexPipeline(ctx, s, meta.RootPath, cfg, cachedProvider)
	if err != nil {
		_ = s.SetStatus(store.StatusFailed)
		return err
	}

	printCounters("update", name, counters)
	return nil
}
