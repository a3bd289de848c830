package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dennisonbertram/lgrep/internal/config"
	"github.com/dennisonbertram/lgrep/internal/embed"
	"github.com/dennisonbertram/lgrep/internal/layout"
	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/dennisonbertram/lgrep/internal/query"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	kind, ok := lgerr.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case lgerr.NotFound, lgerr.AlreadyExists, lgerr.InvalidInput:
		return 1
	case lgerr.StoreError, lgerr.ProviderError, lgerr.Timeout:
		return 2
	case lgerr.Cancelled:
		return 130
	default:
		return 1
	}
}

// openLayout resolves the data root and makes sure its directories exist.
func openLayout() (*layout.Layout, error) {
	lay, err := layout.New()
	if err != nil {
		return nil, lgerr.Wrap(lgerr.StoreError, "cli", "resolve data root", err)
	}
	if err := lay.EnsureDirs(); err != nil {
		return nil, lgerr.Wrap(lgerr.StoreError, "cli", "create data directories", err)
	}
	return lay, nil
}

// loadConfig reads the global user configuration from the data root.
func loadConfig(lay *layout.Layout) (*config.Config, error) {
	cfg, err := config.NewLoader(lay.Root).Load()
	if err != nil {
		return nil, lgerr.Wrap(lgerr.InvalidInput, "cli", "load config", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, lgerr.Wrap(lgerr.InvalidInput, "cli", "validate config", err)
	}
	return cfg, nil
}

// resolveIndexName returns the --index flag if set, else auto-detects from
// the current directory.
func resolveIndexName(lay *layout.Layout) (string, error) {
	if indexFlag != "" {
		return indexFlag, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", lgerr.Wrap(lgerr.StoreError, "cli", "get working directory", err)
	}
	name, err := query.AutoDetect(lay, cwd)
	if err != nil {
		return "", lgerr.Wrap(lgerr.StoreError, "cli", "auto-detect index", err)
	}
	if name == "" {
		return "", lgerr.New(lgerr.NotFound, "cli", "no index specified and none auto-detected from the current directory; pass --index")
	}
	return name, nil
}

// openStore opens the store for name, erroring with NotFound when no index
// has ever been created under that name.
func openStore(lay *layout.Layout, name string) (*store.Store, error) {
	dbDir := lay.IndexDBDir(name)
	if _, err := os.Stat(dbDir); err != nil {
		return nil, lgerr.New(lgerr.NotFound, "cli", fmt.Sprintf("index %q not found", name))
	}
	s, err := store.Open(dbDir, 0)
	if err != nil {
		return nil, lgerr.Wrap(lgerr.StoreError, "cli", "open index", err)
	}
	return s, nil
}

// embedProviderFromEnv builds the embedding provider for model.
// Provider/endpoint are not config keys (the config file only names the
// model); they are read from the environment so a single lgrep binary
// can point at different local embedding backends without a recompile.
func embedProviderFromEnv(model string) (embed.Provider, error) {
	providerKind := os.Getenv("LGREP_EMBED_PROVIDER")
	if providerKind == "" {
		providerKind = "http"
	}
	p, err := embed.NewProvider(embed.Config{
		Provider: providerKind,
		Endpoint: os.Getenv("LGREP_EMBED_ENDPOINT"),
		Model:    model,
	})
	if err != nil {
		return nil, lgerr.Wrap(lgerr.ProviderError, "cli", "create embedding provider", err)
	}
	return p, nil
}

// openEngineReadOnly opens name's store and a Query Engine over it.
// An explicitly-named index may still be building; the caller decides
// whether that matters for its operation.
func openEngineReadOnly(lay *layout.Layout, name string, needsProvider bool) (*store.Store, *query.Engine, error) {
	s, err := openStore(lay, name)
	if err != nil {
		return nil, nil, err
	}
	meta, err := s.Metadata()
	if err != nil {
		s.Close()
		return nil, nil, lgerr.Wrap(lgerr.StoreError, "cli", "read index metadata", err)
	}
	if meta == nil {
		s.Close()
		return nil, nil, lgerr.New(lgerr.NotFound, "cli", fmt.Sprintf("index %q has not been built yet", name))
	}

	var provider embed.Provider
	if needsProvider {
		provider, err = embedProviderFromEnv(meta.Model)
		if err != nil {
			s.Close()
			return nil, nil, err
		}
	}
	return s, query.New(s, provider), nil
}
