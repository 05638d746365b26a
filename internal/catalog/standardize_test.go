package catalog

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glyphkit/internal/bitmap"
	"github.com/zjrosen/glyphkit/internal/testutil"
)

func TestCatalog_CanonicalPath(t *testing.T) {
	c := newCatalog("glyphs", nil, nil)

	tests := []struct {
		asset *Asset
		want  string
	}{
		{testAsset(0x41, "mono", "x.png"), "glyphs/mono/0000-007F Basic Latin/0041.png"},
		{testAsset(0x41, "mono", "x.png", "ja", "ko"), "glyphs/mono/0000-007F Basic Latin/0041 ja,ko.png"},
		{testAsset(0x8FD4, "common", "x.png", "zh_cn"), "glyphs/common/4E00-9FFF CJK Unified Ideographs/8F-/8FD4 zh_cn.png"},
		{testAsset(0x4E00, "common", "x.png"), "glyphs/common/4E00-9FFF CJK Unified Ideographs/4E-/4E00.png"},
		{testAsset(0x1F600, "common", "x.png"), "glyphs/common/1F600-1F64F Emoticons/1F600.png"},
		{testAsset(0x2FE0, "common", "x.png"), "glyphs/common/No_Block/2FE0.png"},
		{testAsset(NotdefCodePoint, "mono", "x.png"), "glyphs/mono/notdef.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, filepath.FromSlash(tt.want), c.CanonicalPath(tt.asset))
		})
	}
}

func TestCatalog_Standardize(t *testing.T) {
	tree := testutil.NewGlyphTree(t).
		WithGlyph("common/0041.png").
		WithGlyph("common/misc/NOTDEF.png").
		WithGlyph("mono/8fd4 KO,JA.png").
		WithGlyph("mono/0000-007F Basic Latin/0042.png").
		WithFile("mono/old/.DS_Store", []byte("x")).
		WithFile("mono/old/deeper/Thumbs.db", []byte("x")).
		WithFile("mono/keep/notes.txt", []byte("x")).
		WithDir("proportional/empty")
	tree.Build()

	c, err := Load(tree.Root(), nil, []string{"ja", "ko"})
	require.NoError(t, err)

	plan, err := c.Plan()
	require.NoError(t, err)
	require.Len(t, plan, 3)

	moves, err := c.Standardize()
	require.NoError(t, err)
	require.Equal(t, plan, moves)

	for _, rel := range []string{
		"common/0000-007F Basic Latin/0041.png",
		"common/notdef.png",
		"mono/4E00-9FFF CJK Unified Ideographs/8F-/8FD4 ja,ko.png",
		"mono/0000-007F Basic Latin/0042.png",
		"mono/keep/notes.txt",
	} {
		require.FileExists(t, tree.Path(rel))
	}
	for _, rel := range []string{"common/0041.png", "common/misc", "mono/8fd4 KO,JA.png", "mono/old", "proportional"} {
		require.NoFileExists(t, tree.Path(rel))
		require.NoDirExists(t, tree.Path(rel))
	}

	asset, ok := c.AssetAt(tree.Path("common/notdef.png"))
	require.True(t, ok)
	require.Equal(t, tree.Path("common/notdef.png"), asset.Path())
	_, ok = c.AssetAt(tree.Path("common/misc/NOTDEF.png"))
	require.False(t, ok)
	require.Equal(t, 4, c.Len())
}

func TestCatalog_Standardize_Idempotent(t *testing.T) {
	tree := testutil.SampleTree(t)

	c, err := Load(tree.Root(), testutil.DirFlavors, testutil.NameFlavors)
	require.NoError(t, err)
	moves, err := c.Standardize()
	require.NoError(t, err)
	require.Len(t, moves, 5)

	moves, err = c.Standardize()
	require.NoError(t, err)
	require.Empty(t, moves)

	reloaded, err := Load(tree.Root(), testutil.DirFlavors, testutil.NameFlavors)
	require.NoError(t, err)
	plan, err := reloaded.Plan()
	require.NoError(t, err)
	require.Empty(t, plan)
	moves, err = reloaded.Standardize()
	require.NoError(t, err)
	require.Empty(t, moves)
}

func TestCatalog_Standardize_KeepsRoot(t *testing.T) {
	tree := testutil.NewGlyphTree(t).WithFile(".DS_Store", []byte("x"))
	root := tree.Build()

	c, err := Load(root, nil, nil)
	require.NoError(t, err)
	_, err = c.Standardize()
	require.NoError(t, err)
	require.DirExists(t, root)
}

func TestCatalog_Standardize_ReencodesGlyphs(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 200})
	img.SetNRGBA(1, 0, color.NRGBA{G: 0xff, A: 100})
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, img))

	tree := testutil.NewGlyphTree(t).WithGlyph("common/notdef.png", testutil.Raw(raw.Bytes()))
	tree.Build()

	c, err := Load(tree.Root(), nil, nil)
	require.NoError(t, err)
	_, err = c.Standardize()
	require.NoError(t, err)

	var want bytes.Buffer
	require.NoError(t, bitmap.Encode(&want, bitmap.Bitmap{{1, 0}}))
	got, err := os.ReadFile(tree.Path("common/notdef.png"))
	require.NoError(t, err)
	require.Equal(t, want.Bytes(), got)
}

func TestCatalog_Standardize_SolidGlyphReloads(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.SetNRGBA(x, y, color.NRGBA{A: 0xff})
		}
	}
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, img))

	tree := testutil.NewGlyphTree(t).WithGlyph("common/misc/2588.png", testutil.Raw(raw.Bytes()))
	tree.Build()

	c, err := Load(tree.Root(), nil, nil)
	require.NoError(t, err)
	_, err = c.Standardize()
	require.NoError(t, err)

	reloaded, err := Load(tree.Root(), nil, nil)
	require.NoError(t, err)
	asset, ok := reloaded.AssetAt(tree.Path("common/2580-259F Block Elements/2588.png"))
	require.True(t, ok)
	require.Equal(t, bitmap.Bitmap{{1, 1}, {1, 1}}, asset.Bitmap())

	plan, err := reloaded.Plan()
	require.NoError(t, err)
	require.Empty(t, plan)
}

func TestCatalog_Standardize_LeavesHiddenDirs(t *testing.T) {
	tree := testutil.NewGlyphTree(t).
		WithGlyph("common/0041.png").
		WithDir(".git/refs/tags").
		WithFile(".git/info/.DS_Store", []byte("x")).
		WithDir("common/.trash/empty")
	tree.Build()

	c, err := Load(tree.Root(), nil, nil)
	require.NoError(t, err)
	_, err = c.Standardize()
	require.NoError(t, err)

	require.DirExists(t, tree.Path(".git/refs/tags"))
	require.FileExists(t, tree.Path(".git/info/.DS_Store"))
	require.DirExists(t, tree.Path("common/.trash/empty"))
}

func TestCatalog_Standardize_DuplicatePath(t *testing.T) {
	tree := testutil.NewGlyphTree(t).WithGlyph("mono/0041.png")
	tree.Build()

	c, err := Load(tree.Root(), nil, nil)
	require.NoError(t, err)

	// A file appearing at the target after loading is not overwritten.
	target := tree.Path("mono/0000-007F Basic Latin/0041.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("other"), 0o644))

	_, err = c.Plan()
	require.ErrorIs(t, err, ErrDuplicatePath)

	_, err = c.Standardize()
	require.ErrorIs(t, err, ErrDuplicatePath)

	var dupErr *DuplicatePathError
	require.ErrorAs(t, err, &dupErr)
	require.Equal(t, target, dupErr.Path)
	require.Equal(t, tree.Path("mono/0041.png"), dupErr.OldPath)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "other", string(data))
	require.FileExists(t, tree.Path("mono/0041.png"))
}

func TestCatalog_Standardize_AfterQuery(t *testing.T) {
	c, _ := loadSample(t)
	_, err := c.CharacterMapping("mono", "ja")
	require.NoError(t, err)

	_, err = c.Standardize()
	require.ErrorIs(t, err, ErrCatalogQueried)
}
