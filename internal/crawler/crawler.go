package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPattern matches RealTest script files.
const DefaultPattern = "*.rts"

// Crawler scans a directory tree for script files.
type Crawler struct {
	pattern string
	ignored []string
}

// NewCrawler creates a crawler matching file names against pattern, a
// filepath.Match glob. An empty pattern means DefaultPattern.
func NewCrawler(pattern string) *Crawler {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Crawler{
		pattern: pattern,
		ignored: []string{".git", "vendor", "node_modules"},
	}
}

// Find returns the sorted paths of matching files below root. Ignored and
// hidden directories are skipped. When root is a file it is returned as is.
func (c *Crawler) Find(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && c.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		ok, err := filepath.Match(c.pattern, d.Name())
		if err != nil {
			return err
		}
		if ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func (c *Crawler) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}
