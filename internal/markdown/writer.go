package markdown

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polything/go-wpmigrate/content"
)

const (
	// Extension is the file extension of exported documents.
	Extension  = ".mdx"
	delimiter  = "---"
	dirPerm    = 0o755
	filePerm   = 0o644
	yamlIndent = 2
)

var (
	ErrSlugRequired  = errors.New("markdown: record slug is required")
	ErrOutputMissing = errors.New("markdown: output directory is required")
)

// Render serialises rec as YAML front matter followed by its body:
// "---\n<yaml>\n---\n\n<body>\n".
func Render(rec content.Record) ([]byte, error) {
	var meta bytes.Buffer
	enc := yaml.NewEncoder(&meta)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("markdown: encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("markdown: encode front matter: %w", err)
	}

	var out bytes.Buffer
	out.WriteString(delimiter + "\n")
	out.WriteString(strings.TrimRight(meta.String(), "\n"))
	out.WriteString("\n" + delimiter + "\n\n")
	if body := trimBody(rec.Content); body != "" {
		out.WriteString(body)
		out.WriteString("\n")
	}
	return out.Bytes(), nil
}

// RelativePath returns "<type dir>/<slug>.mdx".
func RelativePath(rec content.Record) (string, error) {
	slug := strings.TrimSpace(rec.Slug)
	if slug == "" {
		return "", ErrSlugRequired
	}
	if !rec.Type.Valid() {
		return "", fmt.Errorf("%w: %q", content.ErrUnknownType, rec.Type)
	}
	if strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return "", fmt.Errorf("markdown: unsafe slug %q", slug)
	}
	return filepath.Join(rec.Type.Dir(), slug+Extension), nil
}

// Checksum returns the hex encoded SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Rendered is a record serialised for a given output directory.
type Rendered struct {
	// Path is relative to the writer's root.
	Path     string
	Data     []byte
	Checksum string
}

// Writer places rendered records under a root directory.
type Writer struct {
	root string
}

// NewWriter builds a Writer rooted at dir.
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrOutputMissing
	}
	return &Writer{root: filepath.Clean(dir)}, nil
}

// Root returns the output directory.
func (w *Writer) Root() string {
	return w.root
}

// Prepare renders rec without touching the filesystem.
func (w *Writer) Prepare(rec content.Record) (Rendered, error) {
	rel, err := RelativePath(rec)
	if err != nil {
		return Rendered{}, err
	}
	data, err := Render(rec)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Path: filepath.ToSlash(rel), Data: data, Checksum: Checksum(data)}, nil
}

// Write stores a prepared document, creating its type directory on demand.
func (w *Writer) Write(doc Rendered) error {
	target := filepath.Join(w.root, filepath.FromSlash(doc.Path))
	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return fmt.Errorf("markdown: create directory: %w", err)
	}
	if err := os.WriteFile(target, doc.Data, filePerm); err != nil {
		return fmt.Errorf("markdown: write %s: %w", doc.Path, err)
	}
	return nil
}
