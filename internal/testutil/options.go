package testutil

import (
	"github.com/zjrosen/glyphkit/internal/bitmap"
)

// defaultGlyph returns a glyph with a single 2x2 box drawing.
func defaultGlyph(relPath string) glyphData {
	return glyphData{
		path:  relPath,
		cells: Cells("##", "#."),
	}
}

// GlyphOption configures a glyph during builder setup.
type GlyphOption func(*glyphData)

// Drawing sets the glyph cells.
func Drawing(m bitmap.Bitmap) GlyphOption {
	return func(g *glyphData) { g.cells = m }
}

// Rows sets the glyph cells from "#"/"." rows.
func Rows(rows ...string) GlyphOption {
	return func(g *glyphData) { g.cells = Cells(rows...) }
}

// Raw writes content verbatim instead of an encoded PNG.
func Raw(content []byte) GlyphOption {
	return func(g *glyphData) { g.raw = content }
}

// Opaque writes an RGB image without an alpha channel.
func Opaque() GlyphOption {
	return func(g *glyphData) { g.opaque = true }
}

// Cells builds a bitmap from rows where '#' is a set cell and anything else
// is clear.
func Cells(rows ...string) bitmap.Bitmap {
	m := make(bitmap.Bitmap, len(rows))
	for y, row := range rows {
		m[y] = make([]uint8, len(row))
		for x, c := range row {
			if c == '#' {
				m[y][x] = 1
			}
		}
	}
	return m
}
