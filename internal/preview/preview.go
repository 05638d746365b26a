// Package preview renders specimen images of text set with catalog glyphs.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/zjrosen/glyphkit/internal/bdf"
	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/log"
)

// Options controls specimen layout.
type Options struct {
	DirFlavor  string
	NameFlavor string
	Metrics    config.MetricsConfig
	Scale      int // integer upscale factor, at least 1
	Padding    int // unscaled pixels around the text
}

var (
	background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	foreground = color.NRGBA{A: 0xff}
)

// Render draws text with the glyphs the character mapping of the flavor
// pair selects. Characters without a glyph use .notdef when the catalog has
// one and are skipped otherwise.
func Render(c *catalog.Catalog, text string, opts Options) (*image.NRGBA, error) {
	mapping, err := c.CharacterMapping(opts.DirFlavor, opts.NameFlavor)
	if err != nil {
		return nil, err
	}
	lineHeight := opts.Metrics.Ascent + opts.Metrics.Descent
	if lineHeight <= 0 {
		return nil, fmt.Errorf("line height must be positive, got %d", lineHeight)
	}

	lines := strings.Split(text, "\n")
	rows := make([][]*catalog.Asset, len(lines))
	width := 0
	for i, line := range lines {
		lineWidth := 0
		for _, r := range line {
			asset := resolve(c, mapping, r, opts)
			if asset == nil {
				continue
			}
			rows[i] = append(rows[i], asset)
			lineWidth += asset.Width()
		}
		width = max(width, lineWidth)
	}

	pad := max(opts.Padding, 0)
	canvas := image.NewNRGBA(image.Rect(0, 0, width+2*pad, len(lines)*lineHeight+2*pad))
	xdraw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, xdraw.Src)

	for i, row := range rows {
		x, baseline := pad, pad+i*lineHeight+opts.Metrics.Ascent
		for _, asset := range row {
			drawGlyph(canvas, asset, x, baseline, opts.Metrics)
			x += asset.Width()
		}
	}

	log.Debug(log.CatBuild, "Render preview", "dir_flavor", opts.DirFlavor, "name_flavor", opts.NameFlavor, "lines", len(lines))
	return scale(canvas, opts.Scale), nil
}

func resolve(c *catalog.Catalog, mapping map[rune]string, r rune, opts Options) *catalog.Asset {
	codePoint := int(r)
	if _, ok := mapping[r]; !ok {
		codePoint = catalog.NotdefCodePoint
	}
	entry, ok := c.Entry(codePoint)
	if !ok {
		return nil
	}
	return entry.Resolve(opts.DirFlavor, opts.NameFlavor)
}

// drawGlyph centers the bitmap between ascent and descent, the same
// placement built fonts use.
func drawGlyph(canvas *image.NRGBA, asset *catalog.Asset, x, baseline int, metrics config.MetricsConfig) {
	height := asset.Height()
	bottom := bdf.CenterOffset(metrics.Ascent, metrics.Descent, height)
	top := baseline - bottom - height
	for y, row := range asset.Bitmap() {
		for dx, v := range row {
			if v != 0 {
				canvas.SetNRGBA(x+dx, top+y, foreground)
			}
		}
	}
}

func scale(src *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating preview dir: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding preview: %w", err)
	}
	return f.Close()
}
