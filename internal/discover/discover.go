// Package discover walks a root directory for indexable files, applying
// user excludes plus the built-in exclude set.
package discover

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// builtinExcludeNames are always excluded (plus dotfiles unless opted
// in). Each is matched both as an exact path segment and, via a /**
// suffix, as a directory prefix.
var builtinExcludeNames = []string{"node_modules", ".git", "dist", "build"}

// builtinExcludes expands each name into patterns that match it at any
// depth, not only at the walk root.
func builtinExcludes() []string {
	var out []string
	for _, name := range builtinExcludeNames {
		out = append(out, name, name+"/**", "**/"+name, "**/"+name+"/**")
	}
	return out
}

// Discovery walks a root directory, returning paths whose relative path
// doesn't match any exclude glob and whose size doesn't exceed maxFileSize.
type Discovery struct {
	root            string
	excludes        []glob.Glob
	includeDotfiles bool
	maxFileSize     int64
}

// Config configures a Discovery.
type Config struct {
	Root            string
	Excludes        []string // user-supplied glob patterns, gobwas/glob syntax with '/' as separator
	IncludeDotfiles bool
	MaxFileSize     int64 // 0 means unbounded
}

// New compiles excludes and returns a Discovery.
func New(cfg Config) (*Discovery, error) {
	d := &Discovery{
		root:            cfg.Root,
		includeDotfiles: cfg.IncludeDotfiles,
		maxFileSize:     cfg.MaxFileSize,
	}
	for _, pattern := range append(builtinExcludes(), cfg.Excludes...) {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.excludes = append(d.excludes, g)
	}
	return d, nil
}

// File is one discovered file.
type File struct {
	AbsPath string
	RelPath string
	Size    int64
}

// Walk returns every file under root that survives the exclude set and the
// max-file-size filter. Files excluded for size are simply omitted here;
// the chunker additionally records a file_too_large note for files that
// slip through (e.g. when MaxFileSize is 0).
func (d *Discovery) Walk() ([]File, error) {
	var out []File
	err := filepath.Walk(d.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.shouldExclude(relPath) {
			return nil
		}
		if d.maxFileSize > 0 && info.Size() > d.maxFileSize {
			return nil
		}

		out = append(out, File{AbsPath: path, RelPath: relPath, Size: info.Size()})
		return nil
	})
	return out, err
}

// ShouldExclude reports whether relPath (slash-separated, relative to the
// discovery root) is excluded by the built-in set, user excludes, or the
// dotfile rule. Exported for the watcher, which filters
// filesystem events by the same exclude set the indexer uses rather than
// keeping a second copy of it.
func (d *Discovery) ShouldExclude(relPath string) bool {
	return d.shouldExclude(relPath)
}

func (d *Discovery) shouldExclude(relPath string) bool {
	if !d.includeDotfiles && isDotfilePath(relPath) {
		return true
	}
	if d.matchesAny(relPath) {
		return true
	}
	return d.matchesAny(relPath + "/**")
}

func (d *Discovery) matchesAny(path string) bool {
	for _, g := range d.excludes {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func isDotfilePath(relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}
