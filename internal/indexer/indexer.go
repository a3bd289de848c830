// Package indexer implements the indexing pipeline: file
// discovery and change classification, parse+extract+chunk+embed for
// changed files, and transactional per-file writes into the Store.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dennisonbertram/lgrep/internal/chunk"
	"github.com/dennisonbertram/lgrep/internal/discover"
	"github.com/dennisonbertram/lgrep/internal/embed"
	"github.com/dennisonbertram/lgrep/internal/extract"
	"github.com/dennisonbertram/lgrep/internal/hash"
	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// Counters reports what one Run did.
type Counters struct {
	FilesProcessed int
	FilesSkipped   int
	FilesAdded     int
	FilesUpdated   int
	FilesDeleted   int
	ChunksCreated  int
	RunID          string
}

// Indexer wires discovery, the parser front-end, extraction, chunking, and
// embedding into the Store. It is the Store's only writer.
type Indexer struct {
	store     *store.Store
	discovery *discover.Discovery
	frontend  *parser.Frontend
	chunker   *chunk.Chunker
	provider  embed.Provider // expected to already be cache-wrapped, see embed.NewCachedProvider
	model     string

	batchSize   int
	maxInFlight int
}

// Config configures a new Indexer.
type Config struct {
	Store       *store.Store
	Discovery   *discover.Discovery
	Frontend    *parser.Frontend
	Chunker     *chunk.Chunker
	Provider    embed.Provider
	Model       string
	BatchSize   int // embedding batch size, default 64
	MaxInFlight int // bounded concurrent embed calls, default 8
}

// New builds an Indexer from cfg.
func New(cfg Config) *Indexer {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 8
	}
	return &Indexer{
		store:       cfg.Store,
		discovery:   cfg.Discovery,
		frontend:    cfg.Frontend,
		chunker:     cfg.Chunker,
		provider:    cfg.Provider,
		model:       cfg.Model,
		batchSize:   batchSize,
		maxInFlight: maxInFlight,
	}
}

// pendingFile is a discovered file classified as added or modified, carrying
// its already-read content forward so the run pipeline never reads a file
// twice.
type pendingFile struct {
	discover.File
	content []byte
	hash    string
	added   bool
}

// pendingChunk tracks a chunk.Window through embedding before it becomes a
// store.Chunk; vector is filled in once the batched embed call returns.
type pendingChunk struct {
	window chunk.Window
	vector []float32
}

// Run executes one create-or-update pass. Create and update
// are the same pipeline: a fresh index has no FileRecords, so every
// discovered file classifies as added.
func (ix *Indexer) Run(ctx context.Context) (Counters, error) {
	var counters Counters

	discovered, err := ix.discovery.Walk()
	if err != nil {
		return counters, fmt.Errorf("indexer: discover files: %w", err)
	}

	existing, err := ix.store.AllFiles()
	if err != nil {
		return counters, fmt.Errorf("indexer: load file records: %w", err)
	}
	byPath := make(map[string]store.FileRecord, len(existing))
	for _, f := range existing {
		byPath[f.AbsPath] = f
	}

	seen := make(map[string]bool, len(discovered))
	var pending []pendingFile

	for _, df := range discovered {
		data, err := os.ReadFile(df.AbsPath)
		if err != nil {
			continue // could not even be classified; not counted anywhere
		}
		seen[df.AbsPath] = true
		h := hash.Content(data)

		stored, existed := byPath[df.AbsPath]
		switch {
		case !existed:
			counters.FilesProcessed++
			pending = append(pending, pendingFile{File: df, content: data, hash: h, added: true})
		case stored.ContentHash != h:
			counters.FilesProcessed++
			pending = append(pending, pendingFile{File: df, content: data, hash: h, added: false})
		default:
			counters.FilesSkipped++
		}
	}

	for absPath := range byPath {
		if seen[absPath] {
			continue
		}
		if err := ix.store.DeleteFile(absPath); err != nil {
			return counters, fmt.Errorf("indexer: delete %s: %w", absPath, err)
		}
		counters.FilesDeleted++
	}

	if len(pending) == 0 {
		if _, err := ix.store.RefreshChunkCount(); err != nil {
			return counters, err
		}
		runID, err := ix.store.CompleteRun(store.StatusReady)
		if err != nil {
			return counters, err
		}
		counters.RunID = runID
		return counters, nil
	}

	writes := make([]store.FileWrite, len(pending))
	chunksByFile := make([][]pendingChunk, len(pending))
	var allTexts []string
	var textOwner [][2]int // [fileIdx, chunkIdx] per text in allTexts

	for i, pf := range pending {
		write, chunks, parseNote := ix.analyzeFile(pf)
		writes[i] = write
		chunksByFile[i] = chunks
		if parseNote != "" {
			writes[i].File.ParseError = parseNote
		}
		for j, c := range chunks {
			allTexts = append(allTexts, c.window.Content)
			textOwner = append(textOwner, [2]int{i, j})
		}
	}

	if len(allTexts) > 0 {
		vectors, err := embed.EmbedBounded(ctx, ix.provider, allTexts, ix.batchSize, ix.maxInFlight, nil)
		if err != nil {
			return counters, fmt.Errorf("indexer: embed chunks: %w", err)
		}
		for k, v := range vectors {
			owner := textOwner[k]
			chunksByFile[owner[0]][owner[1]].vector = v
		}
	}

	for i, pf := range pending {
		w := writes[i]
		for _, c := range chunksByFile[i] {
			w.Chunks = append(w.Chunks, store.Chunk{
				ID:          fmt.Sprintf("%s:%d", pf.RelPath, c.window.LineStart),
				FilePath:    pf.AbsPath,
				RelPath:     pf.RelPath,
				Content:     c.window.Content,
				LineStart:   c.window.LineStart,
				LineEnd:     c.window.LineEnd,
				Vector:      c.vector,
				ContentHash: hash.Content([]byte(c.window.Content)),
			})
		}
		counters.ChunksCreated += len(w.Chunks)

		if err := ix.store.ReplaceFile(w); err != nil {
			return counters, fmt.Errorf("indexer: write %s: %w", pf.RelPath, err)
		}
		if pf.added {
			counters.FilesAdded++
		} else {
			counters.FilesUpdated++
		}
	}

	if _, err := ix.store.RefreshChunkCount(); err != nil {
		return counters, err
	}
	runID, err := ix.store.CompleteRun(store.StatusReady)
	if err != nil {
		return counters, err
	}
	counters.RunID = runID
	return counters, nil
}

// analyzeFile parses, extracts, and chunks one file. Parse failures and
// unsupported extensions never abort the run: they leave
// Symbols/Dependencies/Calls empty and, for a genuine parse failure, set a
// note on the returned FileRecord.
func (ix *Indexer) analyzeFile(pf pendingFile) (store.FileWrite, []pendingChunk, string) {
	record := store.FileRecord{
		AbsPath:     pf.AbsPath,
		RelPath:     pf.RelPath,
		Extension:   filepath.Ext(pf.AbsPath),
		ContentHash: pf.hash,
		Size:        int64(len(pf.content)),
		MTime:       fileMTime(pf.AbsPath),
		AnalyzedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	var result extract.Result
	tree, parseErr := ix.frontend.Parse(pf.AbsPath, pf.content)
	if tree != nil {
		defer tree.Close()
		if r, err := extract.Extract(tree, pf.AbsPath, pf.RelPath); err == nil {
			result = r
		} else {
			parseErr = err.Error()
		}
	}

	windows, note := ix.chunker.Chunk(pf.content)
	if note != "" {
		if parseErr == "" {
			parseErr = note
		}
		windows = nil
	}

	chunks := make([]pendingChunk, len(windows))
	for i, w := range windows {
		chunks[i] = pendingChunk{window: w}
	}

	write := store.FileWrite{
		File:         record,
		Symbols:      result.Symbols,
		Dependencies: result.Dependencies,
		Calls:        result.Calls,
	}
	return write, chunks, parseErr
}

func fileMTime(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339)
}
