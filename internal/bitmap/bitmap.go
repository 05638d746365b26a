// Package bitmap converts glyph pixel matrices to and from PNG images.
//
// Only the alpha channel carries information: a cell is set when the
// pixel's alpha exceeds 127. Images without an alpha channel are fully
// opaque, so every cell is set. Encoded images are black with alpha 0 or
// 255; png.Encode stores a fully opaque one as truecolor without alpha.
package bitmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/zjrosen/glyphkit/internal/log"
)

// ErrFormat is returned for streams that are not usable glyph images.
var ErrFormat = errors.New("invalid glyph image")

const alphaThreshold = 127

// Bitmap is a row-major matrix of 0/1 cells.
type Bitmap [][]uint8

// Width returns the number of columns.
func (b Bitmap) Width() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Height returns the number of rows.
func (b Bitmap) Height() int {
	return len(b)
}

// Normalize returns a copy with every nonzero cell set to 1.
func (b Bitmap) Normalize() Bitmap {
	out := make(Bitmap, len(b))
	for y, row := range b {
		out[y] = make([]uint8, len(row))
		for x, v := range row {
			if v != 0 {
				out[y][x] = 1
			}
		}
	}
	return out
}

// Decode reads a PNG image and thresholds its alpha channel.
func Decode(r io.Reader) (Bitmap, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	bounds := img.Bounds()
	m := make(Bitmap, bounds.Dy())
	for y := range m {
		row := make([]uint8, bounds.Dx())
		for x := range row {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			if c.A > alphaThreshold {
				row[x] = 1
			}
		}
		m[y] = row
	}
	return m, nil
}

// Encode writes m as a PNG of black pixels with alpha 0 or 255.
func Encode(w io.Writer, m Bitmap) error {
	width, height := m.Width(), m.Height()
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: empty bitmap", ErrFormat)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y, row := range m {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrFormat, y, len(row), width)
		}
		for x, v := range row {
			c := color.NRGBA{}
			if v != 0 {
				c.A = 0xff
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return png.Encode(w, img)
}

// Load decodes the PNG file at path.
func Load(path string) (Bitmap, error) {
	f, err := os.Open(path) //nolint:gosec // G304: glyph paths come from the catalog walk
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug(log.CatBitmap, "Load glyph data", "path", path, "width", m.Width(), "height", m.Height())
	return m, nil
}

// Save encodes m to path, replacing the file atomically (write to temp, then rename).
func Save(path string, m Bitmap) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, ".glyph.png.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if err := Encode(temp, m); err != nil {
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

	log.Debug(log.CatBitmap, "Save glyph data", "path", path)
	return nil
}
