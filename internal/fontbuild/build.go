// Package fontbuild turns a glyph catalog into one bitmap font per
// (dir flavor, name flavor) pair, plus one collection font per dir flavor
// holding every drawing those fonts share.
package fontbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/glyphkit/internal/bdf"
	"github.com/zjrosen/glyphkit/internal/cachemanager"
	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/log"
	"github.com/zjrosen/glyphkit/internal/tracing"
)

// ErrUnsafeOutputsDir is returned when the outputs dir would take the glyph
// sources with it when recreated.
var ErrUnsafeOutputsDir = errors.New("outputs dir must not contain the glyphs dir")

// Options selects what a build does.
type Options struct {
	// SkipStandardize leaves the glyph tree untouched.
	SkipStandardize bool
}

// Output describes one written font.
type Output struct {
	DirFlavor  string
	NameFlavor string
	Path       string
	Glyphs     int
}

// Result summarizes a build. Collections have an empty NameFlavor.
type Result struct {
	Moves       []catalog.Move
	Outputs     []Output
	Collections []Output
}

// Builder runs font builds for one configuration.
type Builder struct {
	cfg    config.Config
	tracer trace.Tracer

	// glyphs converts each asset once across every font of a build. It is
	// replaced at the start of every build.
	glyphs *cachemanager.ReadThroughCache[string, bdf.Glyph, glyphInput]
}

type glyphInput struct {
	asset   *catalog.Asset
	metrics config.MetricsConfig
}

// NewBuilder creates a builder. tracer may be a no-op tracer. A Builder
// runs one build at a time.
func NewBuilder(cfg config.Config, tracer trace.Tracer) *Builder {
	return &Builder{
		cfg:    cfg,
		tracer: tracer,
		glyphs: newGlyphCache(),
	}
}

func newGlyphCache() *cachemanager.ReadThroughCache[string, bdf.Glyph, glyphInput] {
	return cachemanager.NewReadThroughCache[string, bdf.Glyph, glyphInput](
		cachemanager.NewMemo[string, bdf.Glyph]("bdf-glyph"), convertGlyph, false)
}

// Build recreates the outputs dir, loads and prepares the catalog, then
// writes every font.
func (b *Builder) Build(ctx context.Context, opts Options) (*Result, error) {
	ctx, span := b.tracer.Start(ctx, tracing.SpanBuild)
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrGlyphsDir, b.cfg.GlyphsDir))

	result, err := b.build(ctx, opts)
	tracing.RecordError(span, err)
	return result, err
}

func (b *Builder) build(ctx context.Context, opts Options) (*Result, error) {
	b.glyphs = newGlyphCache()
	if err := b.resetOutputsDir(); err != nil {
		return nil, err
	}

	c, err := b.load(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if !opts.SkipStandardize {
		if result.Moves, err = b.standardize(ctx, c); err != nil {
			return result, err
		}
	}
	if err := b.fallbackDefaults(ctx, c); err != nil {
		return result, err
	}

	for _, dirFlavor := range b.dirFlavors(c) {
		for _, nameFlavor := range b.nameFlavors() {
			output, err := b.writeFont(ctx, c, dirFlavor, nameFlavor)
			if err != nil {
				return result, err
			}
			result.Outputs = append(result.Outputs, output)
		}
		// A collection needs the whole name vocabulary.
		if b.cfg.NameVocabulary() == nil {
			continue
		}
		collection, err := b.writeCollection(ctx, c, dirFlavor)
		if err != nil {
			return result, err
		}
		result.Collections = append(result.Collections, collection)
	}

	log.Info(log.CatBuild, "Build finished", "fonts", len(result.Outputs), "collections", len(result.Collections), "moved", len(result.Moves))
	return result, nil
}

func (b *Builder) resetOutputsDir() error {
	outputs, err := filepath.Abs(b.cfg.OutputsDir)
	if err != nil {
		return err
	}
	glyphs, err := filepath.Abs(b.cfg.GlyphsDir)
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(outputs, glyphs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: '%s'", ErrUnsafeOutputsDir, b.cfg.OutputsDir)
	}

	if err := os.RemoveAll(outputs); err != nil {
		return fmt.Errorf("deleting outputs dir: %w", err)
	}
	if err := os.MkdirAll(outputs, 0o755); err != nil {
		return fmt.Errorf("creating outputs dir: %w", err)
	}
	return nil
}

func (b *Builder) load(ctx context.Context) (*catalog.Catalog, error) {
	_, span := b.tracer.Start(ctx, tracing.SpanLoad)
	defer span.End()

	c, err := catalog.Load(b.cfg.GlyphsDir, b.cfg.DirVocabulary(), b.cfg.NameVocabulary())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrFileCount, c.Len()))
	return c, nil
}

func (b *Builder) standardize(ctx context.Context, c *catalog.Catalog) ([]catalog.Move, error) {
	_, span := b.tracer.Start(ctx, tracing.SpanStandardize)
	defer span.End()

	moves, err := c.Standardize()
	span.SetAttributes(attribute.Int(tracing.AttrMoveCount, len(moves)))
	tracing.RecordError(span, err)
	return moves, err
}

// fallbackDefaults promotes default drawings when a name vocabulary exists.
func (b *Builder) fallbackDefaults(ctx context.Context, c *catalog.Catalog) error {
	if c.NameVocabulary() == nil {
		return nil
	}
	_, span := b.tracer.Start(ctx, tracing.SpanFallback)
	defer span.End()

	err := c.FallbackDefaults()
	tracing.RecordError(span, err)
	return err
}

// dirFlavors returns the declared dir flavors, or the loaded ones without
// the common fallback, or common alone.
func (b *Builder) dirFlavors(c *catalog.Catalog) []string {
	if vocabulary := b.cfg.DirVocabulary(); vocabulary != nil {
		return vocabulary
	}
	var flavors []string
	for _, dirFlavor := range c.DirFlavors() {
		if dirFlavor != catalog.CommonDirFlavor {
			flavors = append(flavors, dirFlavor)
		}
	}
	if len(flavors) == 0 {
		return []string{catalog.CommonDirFlavor}
	}
	return flavors
}

func (b *Builder) nameFlavors() []string {
	if vocabulary := b.cfg.NameVocabulary(); vocabulary != nil {
		return vocabulary
	}
	return []string{catalog.DefaultNameFlavor}
}

func (b *Builder) writeFont(ctx context.Context, c *catalog.Catalog, dirFlavor, nameFlavor string) (Output, error) {
	_, span := b.tracer.Start(ctx, tracing.SpanFontPrefix+dirFlavor+"."+nameFlavor)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrDirFlavor, dirFlavor),
		attribute.String(tracing.AttrNameFlavor, nameFlavor),
		attribute.String(tracing.AttrFontFormat, "bdf"),
	)

	font, err := b.Font(ctx, c, dirFlavor, nameFlavor)
	if err != nil {
		tracing.RecordError(span, err)
		return Output{}, err
	}
	span.AddEvent(tracing.EventGlyphsCollected, trace.WithAttributes(attribute.Int(tracing.AttrGlyphCount, len(font.Glyphs))))

	path := filepath.Join(b.cfg.OutputsDir, FileName(b.cfg.Font.Family, dirFlavor, nameFlavor))
	if err := bdf.WriteFile(path, font); err != nil {
		tracing.RecordError(span, err)
		return Output{}, err
	}
	span.AddEvent(tracing.EventFontWritten, trace.WithAttributes(attribute.String(tracing.AttrOutputPath, path)))

	log.Info(log.CatBuild, "Make font file", "path", path, "glyphs", len(font.Glyphs))
	return Output{DirFlavor: dirFlavor, NameFlavor: nameFlavor, Path: path, Glyphs: len(font.Glyphs)}, nil
}

func (b *Builder) writeCollection(ctx context.Context, c *catalog.Catalog, dirFlavor string) (Output, error) {
	_, span := b.tracer.Start(ctx, tracing.SpanCollectionPrefix+dirFlavor)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrDirFlavor, dirFlavor),
		attribute.String(tracing.AttrFontFormat, "bdf"),
	)

	font, err := b.Collection(ctx, c, dirFlavor)
	if err != nil {
		tracing.RecordError(span, err)
		return Output{}, err
	}
	span.AddEvent(tracing.EventGlyphsCollected, trace.WithAttributes(attribute.Int(tracing.AttrGlyphCount, len(font.Glyphs))))

	path := filepath.Join(b.cfg.OutputsDir, CollectionFileName(b.cfg.Font.Family, dirFlavor))
	if err := bdf.WriteFile(path, font); err != nil {
		tracing.RecordError(span, err)
		return Output{}, err
	}
	span.AddEvent(tracing.EventFontWritten, trace.WithAttributes(attribute.String(tracing.AttrOutputPath, path)))

	log.Info(log.CatBuild, "Make collection file", "path", path, "glyphs", len(font.Glyphs))
	return Output{DirFlavor: dirFlavor, Path: path, Glyphs: len(font.Glyphs)}, nil
}

// Font assembles the font of one flavor pair. A glyph carries its code point
// as encoding only when the character mapping selects it.
func (b *Builder) Font(ctx context.Context, c *catalog.Catalog, dirFlavor, nameFlavor string) (*bdf.Font, error) {
	mapping, err := c.CharacterMapping(dirFlavor, nameFlavor)
	if err != nil {
		return nil, err
	}
	assets, err := c.GlyphList(dirFlavor, []string{nameFlavor})
	if err != nil {
		return nil, err
	}
	family := fmt.Sprintf("%s %s %s", b.cfg.Font.Family, capitalize(dirFlavor), nameFlavor)
	return b.assemble(ctx, dirFlavor, family, mapping, assets)
}

// Collection assembles every drawing the fonts of dirFlavor use, each once.
// Default drawings carry their code point; alternates are unencoded.
func (b *Builder) Collection(ctx context.Context, c *catalog.Catalog, dirFlavor string) (*bdf.Font, error) {
	mapping, err := c.CharacterMapping(dirFlavor, catalog.DefaultNameFlavor)
	if err != nil {
		return nil, err
	}
	assets, err := c.GlyphList(dirFlavor, nil)
	if err != nil {
		return nil, err
	}
	family := fmt.Sprintf("%s %s", b.cfg.Font.Family, capitalize(dirFlavor))
	return b.assemble(ctx, dirFlavor, family, mapping, assets)
}

func (b *Builder) assemble(ctx context.Context, dirFlavor, family string, mapping map[rune]string, assets []*catalog.Asset) (*bdf.Font, error) {
	metrics := b.cfg.Font.MetricsFor(dirFlavor)
	font := &bdf.Font{
		Family:    family,
		Version:   b.cfg.Font.Version,
		Size:      b.cfg.Font.Size,
		Ascent:    metrics.Ascent,
		Descent:   metrics.Descent,
		XHeight:   metrics.XHeight,
		CapHeight: metrics.CapHeight,
		Glyphs:    make([]bdf.Glyph, 0, len(assets)),
	}
	for _, asset := range assets {
		// Metrics differ per dir flavor, so they are part of the key.
		key := fmt.Sprintf("%s|%d|%d", asset.Path(), metrics.Ascent, metrics.Descent)
		glyph, err := b.glyphs.Get(ctx, key, glyphInput{asset: asset, metrics: metrics}, cachemanager.NoExpiration)
		if err != nil {
			return nil, err
		}
		glyph.Encoding = -1
		if codePoint := asset.CodePoint(); codePoint >= 0 && mapping[rune(codePoint)] == glyph.Name {
			glyph.Encoding = codePoint
		}
		font.Glyphs = append(font.Glyphs, glyph)
	}
	return font, nil
}

// convertGlyph centers the bitmap vertically between ascent and descent.
func convertGlyph(_ context.Context, in glyphInput) (bdf.Glyph, error) {
	return bdf.Glyph{
		Name:    in.asset.GlyphName(),
		Advance: in.asset.Width(),
		OffsetY: bdf.CenterOffset(in.metrics.Ascent, in.metrics.Descent, in.asset.Height()),
		Bitmap:  in.asset.Bitmap(),
	}, nil
}

// FileName returns the output file name of one font, e.g.
// "glyphkit-pixel-mono-ja.bdf".
func FileName(family, dirFlavor, nameFlavor string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(family), "-"))
	return fmt.Sprintf("%s-%s-%s.bdf", slug, dirFlavor, nameFlavor)
}

// CollectionFileName returns the output file name of a dir flavor's
// collection, e.g. "glyphkit-pixel-mono.bdf".
func CollectionFileName(family, dirFlavor string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(family), "-"))
	return fmt.Sprintf("%s-%s.bdf", slug, dirFlavor)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
