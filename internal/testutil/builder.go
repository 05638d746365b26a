package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glyphkit/internal/bitmap"
)

// glyphData holds a glyph file to be written.
type glyphData struct {
	path   string
	cells  bitmap.Bitmap
	raw    []byte
	opaque bool
}

// GlyphTree accumulates glyph files and writes them below a temp root.
type GlyphTree struct {
	t      *testing.T
	root   string
	glyphs []glyphData
	files  map[string][]byte
	dirs   []string
}

// NewGlyphTree creates a builder rooted in a fresh test temp directory.
func NewGlyphTree(t *testing.T) *GlyphTree {
	t.Helper()
	return &GlyphTree{t: t, root: t.TempDir(), files: make(map[string][]byte)}
}

// Root returns the tree root.
func (g *GlyphTree) Root() string { return g.root }

// WithGlyph adds a glyph file at the slash-separated path relative to the
// root, e.g. "common/0041.png".
func (g *GlyphTree) WithGlyph(relPath string, opts ...GlyphOption) *GlyphTree {
	glyph := defaultGlyph(relPath)
	for _, opt := range opts {
		opt(&glyph)
	}
	g.glyphs = append(g.glyphs, glyph)
	return g
}

// WithFile adds a non-glyph file with raw content.
func (g *GlyphTree) WithFile(relPath string, content []byte) *GlyphTree {
	g.files[relPath] = content
	return g
}

// WithDir adds an empty directory.
func (g *GlyphTree) WithDir(relPath string) *GlyphTree {
	g.dirs = append(g.dirs, relPath)
	return g
}

// Build writes everything to disk and returns the root.
func (g *GlyphTree) Build() string {
	g.t.Helper()
	for _, dir := range g.dirs {
		require.NoError(g.t, os.MkdirAll(g.abs(dir), 0o755))
	}
	for _, glyph := range g.glyphs {
		g.writeFile(glyph.path, encodeGlyph(g.t, glyph))
	}
	for relPath, content := range g.files {
		g.writeFile(relPath, content)
	}
	return g.root
}

// Path returns the absolute path of a slash-separated relative path.
func (g *GlyphTree) Path(relPath string) string {
	return g.abs(relPath)
}

func (g *GlyphTree) abs(relPath string) string {
	return filepath.Join(g.root, filepath.FromSlash(relPath))
}

func (g *GlyphTree) writeFile(relPath string, content []byte) {
	g.t.Helper()
	path := g.abs(relPath)
	require.NoError(g.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(g.t, os.WriteFile(path, content, 0o644))
}

func encodeGlyph(t *testing.T, glyph glyphData) []byte {
	t.Helper()
	if glyph.raw != nil {
		return glyph.raw
	}
	if glyph.opaque {
		return OpaquePNG(t, glyph.cells.Width(), glyph.cells.Height())
	}
	var buf bytes.Buffer
	require.NoError(t, bitmap.Encode(&buf, glyph.cells))
	return buf.Bytes()
}
