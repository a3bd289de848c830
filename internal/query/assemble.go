package query

import (
	"context"
	"sort"

	"github.com/dennisonbertram/lgrep/internal/lgerr"
)

// ContextOptions bounds how much source an assembled context may carry.
// A non-positive FileLimit or MaxTokens falls back to the default; a
// negative GraphDepth does too, so zero still means "no expansion".
type ContextOptions struct {
	FileLimit  int // maximum files included
	MaxTokens  int // total token budget across all snippets
	GraphDepth int // how far to expand over the file-dependency graph
}

func (o ContextOptions) withDefaults() ContextOptions {
	if o.FileLimit <= 0 {
		o.FileLimit = 15
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 32000
	}
	if o.GraphDepth < 0 {
		o.GraphDepth = 2
	}
	return o
}

// ContextFile is one file included in an assembled context: the snippets
// that earned its place plus why it was pulled in.
type ContextFile struct {
	RelPath string
	Reason  string // "match" for a search hit, "graph" for dependency expansion
	Snippet string
	Tokens  int
}

// ContextResult is an assembled, token-bounded context for one question,
// ready to be handed to an LLM as grounding material.
type ContextResult struct {
	Question    string
	Files       []ContextFile
	TotalTokens int
}

// AssembleContext builds an LLM-ready context for question: semantic search
// seeds the file set, the file-dependency graph expands it by up to
// opts.GraphDepth hops in both directions (imports and importers), and the
// result is cut off at opts.FileLimit files and opts.MaxTokens estimated
// tokens. Seed files carry their best-ranked matching chunk; expanded
// files carry the head of the file.
func (e *Engine) AssembleContext(ctx context.Context, question string, opts ContextOptions) (ContextResult, error) {
	opts = opts.withDefaults()

	hits, err := e.Search(ctx, question, opts.FileLimit, 0)
	if err != nil {
		return ContextResult{}, err
	}
	if len(hits) == 0 {
		return ContextResult{Question: question}, nil
	}

	// Seed files in rank order, best chunk per file first.
	snippetByFile := make(map[string]string)
	relByFile := make(map[string]string)
	var seeds []string
	for _, h := range hits {
		if _, ok := snippetByFile[h.FilePath]; ok {
			continue
		}
		snippetByFile[h.FilePath] = h.Content
		relByFile[h.FilePath] = h.RelPath
		seeds = append(seeds, h.FilePath)
	}

	expanded, err := e.expandOverGraph(seeds, opts.GraphDepth)
	if err != nil {
		return ContextResult{}, lgerr.Wrap(lgerr.StoreError, "query", "expand context graph", err)
	}

	result := ContextResult{Question: question}
	appendFile := func(absPath, reason string) bool {
		if len(result.Files) >= opts.FileLimit {
			return false
		}
		snippet := snippetByFile[absPath]
		if snippet == "" {
			// Graph-expanded file: no matched chunk, take the head.
			snippet = e.cache.Snippet(absPath, 1, 60)
			if snippet == "" {
				return true // unreadable file, skip but keep going
			}
		}
		tokens := estimateTokens(snippet)
		if result.TotalTokens+tokens > opts.MaxTokens {
			return false
		}
		rel := relByFile[absPath]
		if rel == "" {
			if f, ferr := e.store.FileByAbsPath(absPath); ferr == nil && f != nil {
				rel = f.RelPath
			} else {
				rel = absPath
			}
		}
		result.Files = append(result.Files, ContextFile{
			RelPath: rel,
			Reason:  reason,
			Snippet: snippet,
			Tokens:  tokens,
		})
		result.TotalTokens += tokens
		return true
	}

	for _, f := range seeds {
		if !appendFile(f, "match") {
			return result, nil
		}
	}
	for _, f := range expanded {
		if !appendFile(f, "graph") {
			return result, nil
		}
	}
	return result, nil
}

// expandOverGraph returns files within depth hops of any seed over the
// file-dependency graph, following edges in both directions, nearest hops
// first, seeds excluded. Files at the same distance are ordered by path so
// the expansion is deterministic.
func (e *Engine) expandOverGraph(seeds []string, depth int) ([]string, error) {
	if depth == 0 {
		return nil, nil
	}
	forward, err := buildFileGraph(e.store, false)
	if err != nil {
		return nil, err
	}
	reverse := reverseGraph(forward)

	visited := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		visited[s] = true
	}

	frontier := append([]string(nil), seeds...)
	var out []string
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, f := range frontier {
			for _, neighbor := range append(append([]string(nil), forward[f]...), reverse[f]...) {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
			}
		}
		sort.Strings(next)
		out = append(out, next...)
		frontier = next
	}
	return out, nil
}

// estimateTokens approximates the token count of text (1 token per 4
// characters).
func estimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		n = 1
	}
	return n
}
