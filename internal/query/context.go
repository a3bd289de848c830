package query

import (
	"os"
	"strings"

	"github.com/maypok86/otter"
)

// maxContextCacheWeight bounds the file-line cache at 50MB of line data,
// so a query engine held open across many lookups never grows unbounded.
const maxContextCacheWeight = 50 * 1024 * 1024

// contextCache holds a file's content split into lines, keyed by absolute
// path, so repeated context lookups (rename preview, caller snippets)
// don't re-read and re-split the same file. Weight-bounded LRU.
type contextCache struct {
	lines otter.Cache[string, []string]
}

func newContextCache() *contextCache {
	cache, err := otter.MustBuilder[string, []string](maxContextCacheWeight).
		Cost(func(key string, value []string) uint32 {
			var n uint32
			for _, l := range value {
				n += uint32(len(l)) + 1
			}
			return n
		}).
		Build()
	if err != nil {
		// otter only fails to build on an invalid capacity, which
		// maxContextCacheWeight never is; fall back to an empty,
		// always-miss cache rather than panic from a query path.
		cache, _ = otter.MustBuilder[string, []string](1).Build()
	}
	return &contextCache{lines: cache}
}

// Lines returns absPath split into lines, using the cache when warm.
func (c *contextCache) Lines(absPath string) ([]string, error) {
	if lines, ok := c.lines.Get(absPath); ok {
		return lines, nil
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	c.lines.Set(absPath, lines)
	return lines, nil
}

// Snippet returns lines [start,end] (1-based, inclusive) of absPath,
// clamped to the file's bounds. Errors (e.g. a deleted file) yield an
// empty snippet rather than failing the whole query.
func (c *contextCache) Snippet(absPath string, start, end int) string {
	lines, err := c.Lines(absPath)
	if err != nil {
		return ""
	}
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// Clear drops every cached file, used when the underlying index changes
// (e.g. after a reindex) so stale line content is never served.
func (c *contextCache) Clear() {
	c.lines.Clear()
}
