// Package fs selects ingestable files under a directory tree using
// include/exclude glob patterns.
package fs

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// File is one candidate document found by the walker.
type File struct {
	Path    string // absolute
	RelPath string // relative to the walk root
	Size    int64
	ModTime time.Time
}

// Walker filters a directory tree by doublestar glob patterns. Patterns match
// against paths relative to the walk root.
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker creates a Walker. Empty includes match everything.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{includes: includes, excludes: excludes}
}

// Walk returns all files under root passing the patterns. Excluded
// directories are pruned without descending.
func (w *Walker) Walk(root string) ([]File, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if relPath != "." && w.matchesAny(w.excludes, relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.matchesAny(w.includes, relPath) && !w.matchesAny(w.excludes, relPath) {
			files = append(files, File{
				Path:    path,
				RelPath: relPath,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
		return nil
	})
	return files, err
}

func (w *Walker) matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

// ReadFile reads a file into a string.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MIMEHint guesses a content-type hint from the file extension. The
// normalizer only cares whether the content is markup.
func MIMEHint(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return "text/html"
	case ".xml":
		return "application/xml"
	case ".md", ".markdown":
		return "text/markdown"
	default:
		return "text/plain"
	}
}
