// Package markdown reads and writes the MDX files produced by the migration:
// YAML front matter followed by the converted body. It also discovers
// existing files on disk and renders bodies to HTML for previews.
package markdown
