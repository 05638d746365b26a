// Package bdf writes bitmap fonts in the Glyph Bitmap Distribution Format
// version 2.1.
package bdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/glyphkit/internal/bitmap"
)

const resolution = 75

// ErrNoGlyphs is returned when encoding a font without glyphs.
var ErrNoGlyphs = errors.New("font has no glyphs")

// Glyph is one character of the font.
type Glyph struct {
	Name     string
	Encoding int // code point, or -1 for glyphs reachable only by name
	Advance  int
	OffsetY  int // bottom row relative to the baseline
	Bitmap   bitmap.Bitmap
}

// Font holds everything written to a BDF file. Metrics are in pixels and
// Descent counts pixels below the baseline.
type Font struct {
	Family    string
	Style     string
	Version   string
	Size      int
	Ascent    int
	Descent   int
	XHeight   int
	CapHeight int
	Glyphs    []Glyph
}

// CenterOffset returns the OffsetY that centers a glyph of the given height
// between ascent and descent, rounding down.
func CenterOffset(ascent, descent, height int) int {
	return floorDiv(ascent-descent-height, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

type boundingBox struct {
	width, height, offsetX, offsetY int
}

func (f *Font) boundingBox() boundingBox {
	minY, maxY, maxW := math.MaxInt, math.MinInt, 0
	for _, g := range f.Glyphs {
		maxW = max(maxW, g.Bitmap.Width())
		minY = min(minY, g.OffsetY)
		maxY = max(maxY, g.OffsetY+g.Bitmap.Height())
	}
	return boundingBox{width: maxW, height: maxY - minY, offsetY: minY}
}

// spacing is "M" when every glyph advances the same distance.
func (f *Font) spacing() string {
	for _, g := range f.Glyphs[1:] {
		if g.Advance != f.Glyphs[0].Advance {
			return "P"
		}
	}
	return "M"
}

func (f *Font) averageWidth() int {
	total := 0
	for _, g := range f.Glyphs {
		total += g.Advance
	}
	return int(math.Round(float64(total) * 10 / float64(len(f.Glyphs))))
}

func (f *Font) style() string {
	if f.Style == "" {
		return "Regular"
	}
	return f.Style
}

// xlfdName returns the X Logical Font Description of the font.
func (f *Font) xlfdName() string {
	field := func(s string) string { return strings.ReplaceAll(s, "-", " ") }
	return fmt.Sprintf("-Glyphkit-%s-Medium-R-Normal-%s-%d-%d-%d-%d-%s-%d-ISO10646-1",
		field(f.Family), field(f.style()), f.Size, f.Size*10, resolution, resolution, f.spacing(), f.averageWidth())
}

// Encode writes f in BDF 2.1 syntax.
func (f *Font) Encode(w io.Writer) error {
	if len(f.Glyphs) == 0 {
		return ErrNoGlyphs
	}
	for _, g := range f.Glyphs {
		if g.Bitmap.Width() == 0 {
			return fmt.Errorf("glyph %s: %w", g.Name, bitmap.ErrFormat)
		}
	}

	bw := bufio.NewWriter(w)
	bb := f.boundingBox()

	fmt.Fprintln(bw, "STARTFONT 2.1")
	fmt.Fprintf(bw, "FONT %s\n", f.xlfdName())
	fmt.Fprintf(bw, "SIZE %d %d %d\n", f.Size, resolution, resolution)
	fmt.Fprintf(bw, "FONTBOUNDINGBOX %d %d %d %d\n", bb.width, bb.height, bb.offsetX, bb.offsetY)

	props := []string{
		fmt.Sprintf("FAMILY_NAME %q", f.Family),
		fmt.Sprintf("WEIGHT_NAME %q", "Medium"),
		fmt.Sprintf("SETWIDTH_NAME %q", "Normal"),
		fmt.Sprintf("ADD_STYLE_NAME %q", f.style()),
		fmt.Sprintf("FONT_VERSION %q", f.Version),
		fmt.Sprintf("PIXEL_SIZE %d", f.Size),
		fmt.Sprintf("POINT_SIZE %d", f.Size*10),
		fmt.Sprintf("RESOLUTION_X %d", resolution),
		fmt.Sprintf("RESOLUTION_Y %d", resolution),
		fmt.Sprintf("SPACING %q", f.spacing()),
		fmt.Sprintf("AVERAGE_WIDTH %d", f.averageWidth()),
		fmt.Sprintf("FONT_ASCENT %d", f.Ascent),
		fmt.Sprintf("FONT_DESCENT %d", f.Descent),
		fmt.Sprintf("X_HEIGHT %d", f.XHeight),
		fmt.Sprintf("CAP_HEIGHT %d", f.CapHeight),
		fmt.Sprintf("CHARSET_REGISTRY %q", "ISO10646"),
		fmt.Sprintf("CHARSET_ENCODING %q", "1"),
	}
	fmt.Fprintf(bw, "STARTPROPERTIES %d\n", len(props))
	for _, p := range props {
		fmt.Fprintln(bw, p)
	}
	fmt.Fprintln(bw, "ENDPROPERTIES")

	fmt.Fprintf(bw, "CHARS %d\n", len(f.Glyphs))
	for _, g := range f.Glyphs {
		f.writeGlyph(bw, g)
	}
	fmt.Fprintln(bw, "ENDFONT")
	return bw.Flush()
}

func (f *Font) writeGlyph(w io.Writer, g Glyph) {
	swidth := int(math.Round(float64(g.Advance) * 1000 / float64(f.Size)))
	fmt.Fprintf(w, "STARTCHAR %s\n", g.Name)
	fmt.Fprintf(w, "ENCODING %d\n", g.Encoding)
	fmt.Fprintf(w, "SWIDTH %d 0\n", swidth)
	fmt.Fprintf(w, "DWIDTH %d 0\n", g.Advance)
	fmt.Fprintf(w, "BBX %d %d 0 %d\n", g.Bitmap.Width(), g.Bitmap.Height(), g.OffsetY)
	fmt.Fprintln(w, "BITMAP")
	for _, row := range g.Bitmap {
		fmt.Fprintln(w, hexRow(row))
	}
	fmt.Fprintln(w, "ENDCHAR")
}

// hexRow packs a row most significant bit first, padded to whole bytes.
func hexRow(row []uint8) string {
	packed := make([]byte, (len(row)+7)/8)
	for x, v := range row {
		if v != 0 {
			packed[x/8] |= 0x80 >> (x % 8)
		}
	}
	return fmt.Sprintf("%X", packed)
}

// WriteFile encodes f to path, replacing the file atomically (write to temp, then rename).
func WriteFile(path string, f *Font) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, ".font.bdf.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if err := f.Encode(temp); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
