package fontbuild

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/testutil"
)

func testConfig(t *testing.T, glyphsDir string) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.GlyphsDir = glyphsDir
	cfg.OutputsDir = filepath.Join(t.TempDir(), "outputs")
	cfg.DirFlavors = testutil.DirFlavors
	cfg.NameFlavors = testutil.NameFlavors
	cfg.Font.Family = "Test Pixel"
	return cfg
}

func TestBuilder_Build(t *testing.T) {
	tree := testutil.SampleTree(t)
	cfg := testConfig(t, tree.Root())
	require.NoError(t, os.MkdirAll(cfg.OutputsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputsDir, "stale.bdf"), []byte("x"), 0o644))

	result, err := NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Build(context.Background(), Options{})
	require.NoError(t, err)

	require.Len(t, result.Moves, 5)
	require.Len(t, result.Outputs, 10)
	require.NoFileExists(t, filepath.Join(cfg.OutputsDir, "stale.bdf"))

	glyphCounts := make(map[string]int)
	for _, output := range result.Outputs {
		require.FileExists(t, output.Path)
		glyphCounts[output.DirFlavor+"/"+output.NameFlavor] = output.Glyphs
	}
	require.Equal(t, 3, glyphCounts["mono/ja"])
	require.Equal(t, 3, glyphCounts["mono/zh_cn"])
	require.Equal(t, 2, glyphCounts["proportional/ko"])

	data, err := os.ReadFile(filepath.Join(cfg.OutputsDir, "test-pixel-mono-ja.bdf"))
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "FAMILY_NAME \"Test Pixel Mono ja\"")
	require.Contains(t, content, "STARTCHAR uni8FD4-ja\nENCODING 36820\n")
	require.Contains(t, content, "STARTCHAR .notdef\nENCODING -1\n")

	data, err = os.ReadFile(filepath.Join(cfg.OutputsDir, "test-pixel-mono-zh_cn.bdf"))
	require.NoError(t, err)
	require.Contains(t, string(data), "STARTCHAR uni8FD4\nENCODING 36820\n")

	require.FileExists(t, tree.Path("mono/4E00-9FFF CJK Unified Ideographs/8F-/8FD4 zh_hk,zh_tw.png"))

	require.Len(t, result.Collections, 2)
	require.Equal(t, "mono", result.Collections[0].DirFlavor)
	require.Equal(t, 5, result.Collections[0].Glyphs)
	require.Equal(t, 2, result.Collections[1].Glyphs)

	entries, err := os.ReadDir(cfg.OutputsDir)
	require.NoError(t, err)
	require.Len(t, entries, 12)
}

func TestBuilder_Collection(t *testing.T) {
	tree := testutil.SampleTree(t)
	cfg := testConfig(t, tree.Root())
	c, err := catalog.Load(tree.Root(), cfg.DirVocabulary(), cfg.NameVocabulary())
	require.NoError(t, err)
	require.NoError(t, c.FallbackDefaults())

	font, err := NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Collection(context.Background(), c, "mono")
	require.NoError(t, err)
	require.Equal(t, "Test Pixel Mono", font.Family)

	encodings := make(map[string]int)
	var names []string
	for _, glyph := range font.Glyphs {
		names = append(names, glyph.Name)
		encodings[glyph.Name] = glyph.Encoding
	}
	require.Equal(t, []string{".notdef", "uni0041", "uni8FD4", "uni8FD4-zh_hk", "uni8FD4-ja"}, names,
		"every drawing appears once, in name vocabulary order")
	require.Equal(t, 0x8FD4, encodings["uni8FD4"])
	require.Equal(t, -1, encodings["uni8FD4-zh_hk"])
	require.Equal(t, -1, encodings["uni8FD4-ja"])
	require.Equal(t, 0x41, encodings["uni0041"])
}

func TestBuilder_Build_CollectionFile(t *testing.T) {
	tree := testutil.SampleTree(t)
	cfg := testConfig(t, tree.Root())
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, err := NewBuilder(cfg, provider.Tracer("test")).Build(context.Background(), Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.OutputsDir, "test-pixel-mono.bdf"))
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "FAMILY_NAME \"Test Pixel Mono\"")
	require.Contains(t, content, "CHARS 5\n")
	require.Contains(t, content, "STARTCHAR uni8FD4-ja\nENCODING -1\n")

	var collectionSpans int
	for _, span := range recorder.Ended() {
		if span.Name() == "collection.mono" || span.Name() == "collection.proportional" {
			collectionSpans++
		}
	}
	require.Equal(t, 2, collectionSpans)
}

func TestBuilder_Build_NoCollectionWithoutVocabulary(t *testing.T) {
	tree := testutil.NewGlyphTree(t).WithGlyph("mono/0042.png")
	tree.Build()
	cfg := testConfig(t, tree.Root())
	cfg.DirFlavors = nil
	cfg.NameFlavors = nil

	result, err := NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Build(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, result.Outputs, 1)
	require.Empty(t, result.Collections)
}

func TestBuilder_Build_SkipStandardize(t *testing.T) {
	tree := testutil.SampleTree(t)
	cfg := testConfig(t, tree.Root())

	result, err := NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Build(context.Background(), Options{SkipStandardize: true})
	require.NoError(t, err)
	require.Empty(t, result.Moves)
	require.Len(t, result.Outputs, 10)
	require.FileExists(t, tree.Path("mono/8FD4 zh_cn.png"))
}

func TestBuilder_Build_UndeclaredFlavors(t *testing.T) {
	tree := testutil.NewGlyphTree(t).
		WithGlyph("common/0041.png").
		WithGlyph("mono/0042.png").
		WithGlyph("wide/0042.png")
	tree.Build()
	cfg := testConfig(t, tree.Root())
	cfg.DirFlavors = nil
	cfg.NameFlavors = nil

	result, err := NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Build(context.Background(), Options{})
	require.NoError(t, err)

	var built []string
	for _, output := range result.Outputs {
		built = append(built, filepath.Base(output.Path))
	}
	require.Equal(t, []string{"test-pixel-mono-default.bdf", "test-pixel-wide-default.bdf"}, built)
}

func TestBuilder_Build_UnsafeOutputsDir(t *testing.T) {
	tree := testutil.SampleTree(t)
	cfg := testConfig(t, tree.Root())
	cfg.OutputsDir = filepath.Dir(tree.Root())

	_, err := NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Build(context.Background(), Options{})
	require.ErrorIs(t, err, ErrUnsafeOutputsDir)
	require.FileExists(t, tree.Path("common/0041.png"))

	cfg.OutputsDir = tree.Root()
	_, err = NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Build(context.Background(), Options{})
	require.ErrorIs(t, err, ErrUnsafeOutputsDir)
}

func TestBuilder_Build_Spans(t *testing.T) {
	tree := testutil.SampleTree(t)
	cfg := testConfig(t, tree.Root())
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, err := NewBuilder(cfg, provider.Tracer("test")).Build(context.Background(), Options{})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, span := range recorder.Ended() {
		names[span.Name()] = true
	}
	for _, name := range []string{"build", "catalog.load", "catalog.standardize", "catalog.fallback_defaults", "font.mono.ja", "font.proportional.zh_tw"} {
		require.True(t, names[name], "missing span %s", name)
	}
}

func TestBuilder_Build_NoDefaultFlavor(t *testing.T) {
	tree := testutil.NewGlyphTree(t).WithGlyph("mono/0041 ja.png")
	tree.Build()
	cfg := testConfig(t, tree.Root())
	cfg.DirFlavors = nil
	cfg.NameFlavors = nil
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, err := NewBuilder(cfg, provider.Tracer("test")).Build(context.Background(), Options{})
	require.ErrorIs(t, err, catalog.ErrNoDefaultFlavor)

	for _, span := range recorder.Ended() {
		if span.Name() == "build" {
			require.Equal(t, "Error", span.Status().Code.String())
		}
	}
}

func TestBuilder_Font(t *testing.T) {
	tree := testutil.SampleTree(t)
	cfg := testConfig(t, tree.Root())
	c, err := catalog.Load(tree.Root(), cfg.DirVocabulary(), cfg.NameVocabulary())
	require.NoError(t, err)
	require.NoError(t, c.FallbackDefaults())

	font, err := NewBuilder(cfg, noop.NewTracerProvider().Tracer("test")).Font(context.Background(), c, "mono", "zh_hk")
	require.NoError(t, err)

	require.Equal(t, "Test Pixel Mono zh_hk", font.Family)
	require.Equal(t, 12, font.Size)
	require.Equal(t, 10, font.Ascent)
	require.Equal(t, 2, font.Descent)
	require.Len(t, font.Glyphs, 3)

	notdef := font.Glyphs[0]
	require.Equal(t, ".notdef", notdef.Name)
	require.Equal(t, -1, notdef.Encoding)
	require.Equal(t, 3, notdef.Advance)
	// (10 - 2 - 3) / 2 rounded down
	require.Equal(t, 2, notdef.OffsetY)

	require.Equal(t, "uni8FD4-zh_hk", font.Glyphs[2].Name)
	require.Equal(t, 0x8FD4, font.Glyphs[2].Encoding)
}

func TestFileName(t *testing.T) {
	require.Equal(t, "glyphkit-pixel-mono-ja.bdf", FileName("Glyphkit  Pixel", "mono", "ja"))
	require.Equal(t, "glyphkit-pixel-mono.bdf", CollectionFileName("Glyphkit  Pixel", "mono"))
}
