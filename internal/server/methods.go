package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dennisonbertram/lgrep/internal/query"
)

// methods builds the JSON-RPC method table, one Handler per
// Query Engine operation plus ping.
func methods(indexName string) map[string]Handler {
	return map[string]Handler{
		"ping":           ping(indexName),
		"search":         search,
		"callers":        callers,
		"impact":         impact,
		"deps":           deps,
		"dead":           dead,
		"unused-exports": unusedExports,
		"similar":        similar,
		"cycles":         cycles,
		"symbols":        symbols,
		"stats":          stats,
		"rename":         rename,
		"context":        assembleContext,
	}
}

// ping answers {pong:true, indexName} so a client can confirm both
// liveness and which index it reached.
func ping(indexName string) Handler {
	return func(_ context.Context, _ *query.Engine, _ json.RawMessage) (any, error) {
		return map[string]any{"pong": true, "indexName": indexName}, nil
	}
}

func search(ctx context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Query     string  `json:"query"`
		Limit     int     `json:"limit"`
		Diversity float64 `json:"diversity"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return e.Search(ctx, p.Query, p.Limit, p.Diversity)
}

func callers(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return e.Callers(p.Symbol)
}

func impact(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return e.Impact(p.Symbol)
}

func deps(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		File string `json:"file"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return e.Deps(p.File)
}

func dead(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return e.Dead(p.Kind)
}

func unusedExports(_ context.Context, e *query.Engine, _ json.RawMessage) (any, error) {
	return e.UnusedExports()
}

// similar's wire params name a "symbol" but the operation
// itself clusters chunks globally with no per-symbol
// filter; symbol is accepted and ignored rather than rejected, so a
// caller that passes one per the method signature isn't refused.
func similar(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Symbol string `json:"symbol"`
		Limit  int    `json:"limit"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return e.Similar(p.Limit)
}

func cycles(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		IncludeExternal bool `json:"includeExternal"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
	}
	return e.Cycles(p.IncludeExternal)
}

func symbols(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Kind     string `json:"kind"`
		File     string `json:"file"`
		Exported *bool  `json:"exported"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
	}
	return e.Symbols(query.SymbolFilter{Kind: p.Kind, File: p.File, Exported: p.Exported})
}

func stats(_ context.Context, e *query.Engine, _ json.RawMessage) (any, error) {
	return e.Stats()
}

func assembleContext(ctx context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Question   string `json:"question"`
		FileLimit  int    `json:"fileLimit"`
		MaxTokens  int    `json:"maxTokens"`
		GraphDepth *int   `json:"graphDepth"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	depth := -1 // engine default unless the client says otherwise
	if p.GraphDepth != nil {
		depth = *p.GraphDepth
	}
	return e.AssembleContext(ctx, p.Question, query.ContextOptions{
		FileLimit:  p.FileLimit,
		MaxTokens:  p.MaxTokens,
		GraphDepth: depth,
	})
}

func rename(_ context.Context, e *query.Engine, raw json.RawMessage) (any, error) {
	var p struct {
		Old     string `json:"old"`
		New     string `json:"new"`
		Preview *bool  `json:"preview"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.Old == "" || p.New == "" {
		return nil, fmt.Errorf("rename requires both old and new")
	}
	preview := true
	if p.Preview != nil {
		preview = *p.Preview
	}
	return e.RenamePreview(p.Old, p.New, preview)
}
