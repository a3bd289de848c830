// Package chunk splits file content into bounded, overlapping windows for
// embedding. Windows never split a line: a window's content
// always ends at a line boundary, and line_start/line_end (1-based) record
// the first/last line it spans.
package chunk

import "strings"

// NoteTooLarge is the note recorded when a file exceeds Config.MaxFileSize
// and is skipped entirely rather than chunked.
const NoteTooLarge = "file_too_large"

// Config bounds chunk size and the
// per-file size ceiling above which a file is skipped rather than chunked.
type Config struct {
	Size        int
	Overlap     int
	MaxFileSize int
}

// Window is one bounded slice of a file's content.
type Window struct {
	Content   string
	LineStart int
	LineEnd   int
}

// Chunker turns file content into Windows under a fixed Config.
type Chunker struct {
	cfg Config
}

// New builds a Chunker. A non-positive Size falls back to 2000
// characters.
func New(cfg Config) *Chunker {
	if cfg.Size <= 0 {
		cfg.Size = 2000
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = 0
	}
	return &Chunker{cfg: cfg}
}

// Chunk splits content into windows, or returns NoteTooLarge and no windows
// when content exceeds MaxFileSize. Empty (or whitespace-only) content
// yields zero windows and no note.
func (c *Chunker) Chunk(content []byte) (windows []Window, note string) {
	if c.cfg.MaxFileSize > 0 && len(content) > c.cfg.MaxFileSize {
		return nil, NoteTooLarge
	}
	if strings.TrimSpace(string(content)) == "" {
		return nil, ""
	}

	lines := strings.Split(string(content), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1] // trailing newline produces a spurious empty final line
	}

	return windowLines(lines, c.cfg.Size, c.cfg.Overlap), ""
}

// windowLines accumulates whole lines into windows of at most size
// characters (a single line longer than size is still emitted alone, since
// a window can never end mid-line), then backs the next window's start up
// by whole lines until it has covered at least overlap characters of the
// previous window.
func windowLines(lines []string, size, overlap int) []Window {
	n := len(lines)
	var windows []Window

	i := 0
	for i < n {
		total := 0
		j := i
		for j < n {
			lineLen := len(lines[j]) + 1
			if total > 0 && total+lineLen > size {
				break
			}
			total += lineLen
			j++
		}
		if j == i {
			j = i + 1 // single line exceeds size; emit it anyway
		}

		windows = append(windows, Window{
			Content:   strings.Join(lines[i:j], "\n"),
			LineStart: i + 1,
			LineEnd:   j,
		})

		if j >= n {
			break
		}

		back := 0
		k := j
		for k > i+1 && back < overlap {
			back += len(lines[k-1]) + 1
			k--
		}
		i = k
	}

	return windows
}
