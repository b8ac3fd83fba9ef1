package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LoaderConfig configures how documents are discovered.
type LoaderConfig struct {
	// Patterns limits discovered files by base name (defaults to *.mdx and *.md).
	Patterns []string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// DefaultLoaderConfig walks every sub-directory for .mdx and .md files.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{Patterns: []string{"*" + Extension, "*.md"}, Recursive: true}
}

// Document is a file read back from disk.
type Document struct {
	Path         string         `json:"path"`
	Fields       map[string]any `json:"fields"`
	Body         string         `json:"-"`
	Checksum     string         `json:"checksum"`
	LastModified time.Time      `json:"lastModified"`
}

// LoadError records a file that could not be parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("markdown: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader turns files of an fs.FS into documents.
type Loader struct {
	fs        fs.FS
	patterns  []string
	recursive bool
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	patterns := make([]string, 0, len(cfg.Patterns))
	for _, pattern := range cfg.Patterns {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	if len(patterns) == 0 {
		patterns = DefaultLoaderConfig().Patterns
	}
	return &Loader{fs: filesystem, patterns: patterns, recursive: cfg.Recursive}
}

// LoadFile reads and parses a single document.
func (l *Loader) LoadFile(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	rel := filepath.ToSlash(filepath.Clean(path))

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return Document{}, &LoadError{Path: rel, Err: err}
	}
	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return Document{}, &LoadError{Path: rel, Err: err}
	}
	fields, body, err := ParseFrontMatter(data)
	if err != nil {
		return Document{}, &LoadError{Path: rel, Err: err}
	}

	return Document{
		Path:         rel,
		Fields:       fields,
		Body:         body,
		Checksum:     Checksum(data),
		LastModified: info.ModTime(),
	}, nil
}

// LoadDirectory parses every matching file under dir, sorted by path. Files
// that fail to parse are returned as LoadErrors next to the documents that
// loaded; walking errors abort.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]Document, []error, error) {
	root := filepath.ToSlash(filepath.Clean(dir))

	var (
		docs    []Document
		failed  []error
		matches []string
	)
	walkErr := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if l.matches(path) {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("markdown: walk %s: %w", root, walkErr)
	}

	sort.Strings(matches)
	for _, path := range matches {
		doc, err := l.LoadFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			failed = append(failed, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failed, nil
}

func (l *Loader) matches(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range l.patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
