package layout

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// LocalOverrideFile is the repository-local override file name.
const LocalOverrideFile = ".lgrep.json"

// LocalOverride is the shape of a .lgrep.json file: it may pin an index
// name, a root directory (resolved relative to the file itself), or
// both.
type LocalOverride struct {
	Index string `json:"index,omitempty"`
	Root  string `json:"root,omitempty"`
}

// FindLocalOverride searches for .lgrep.json starting at dir and walking
// upward to the filesystem root. Returns (nil, nil) if none is found.
func FindLocalOverride(dir string) (*LocalOverride, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for {
		candidate := filepath.Join(dir, LocalOverrideFile)
		data, err := os.ReadFile(candidate)
		if err == nil {
			var override LocalOverride
			if err := json.Unmarshal(data, &override); err != nil {
				return nil, err
			}
			if override.Root != "" && !filepath.IsAbs(override.Root) {
				override.Root = filepath.Join(dir, override.Root)
			}
			return &override, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
