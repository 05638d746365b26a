package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glyphkit/internal/bitmap"
	"github.com/zjrosen/glyphkit/internal/testutil"
)

func TestParseAsset(t *testing.T) {
	tree := testutil.NewGlyphTree(t).
		WithGlyph("mono/0041.png").
		WithGlyph("mono/8FD4 KO, ja ,ko.PNG").
		WithGlyph("mono/notdef.png")
	tree.Build()

	tests := []struct {
		name        string
		file        string
		vocabulary  []string
		codePoint   int
		nameFlavors []string
		glyphName   string
		fileName    string
	}{
		{"untagged", "mono/0041.png", nil, 0x41, nil, "uni0041", "0041.png"},
		{"tags without vocabulary keep first occurrence order", "mono/8FD4 KO, ja ,ko.PNG", nil, 0x8FD4, []string{"ko", "ja"}, "uni8FD4-ko", "8FD4 ko,ja.png"},
		{"tags sorted into vocabulary order", "mono/8FD4 KO, ja ,ko.PNG", []string{"ja", "ko"}, 0x8FD4, []string{"ja", "ko"}, "uni8FD4-ja", "8FD4 ja,ko.png"},
		{"notdef", "mono/notdef.png", nil, NotdefCodePoint, nil, ".notdef", "notdef.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := ParseAsset(tree.Path(tt.file), "mono", tt.vocabulary)
			require.NoError(t, err)
			require.Equal(t, tt.codePoint, asset.CodePoint())
			require.Equal(t, tt.nameFlavors, asset.NameFlavors())
			require.Equal(t, tt.glyphName, asset.GlyphName())
			require.Equal(t, tt.fileName, asset.FileName())
			require.Equal(t, "mono", asset.DirFlavor())
			require.Equal(t, 2, asset.Width())
			require.Equal(t, 2, asset.Height())
		})
	}
}

func TestParseAsset_Errors(t *testing.T) {
	tree := testutil.NewGlyphTree(t).
		WithGlyph("mono/00G1.png").
		WithGlyph("mono/110000.png").
		WithGlyph("mono/0041 default.png").
		WithGlyph("mono/0041 ja,.png").
		WithGlyph("mono/0041 fr.png").
		WithGlyph("mono/.png").
		WithGlyph("mono/0042.png", testutil.Raw([]byte("garbage"))).
		WithFile("mono/0041.bmp", []byte("x"))
	tree.Build()

	tests := []struct {
		file string
		want error
	}{
		{"mono/0041.bmp", ErrInvalidExtension},
		{"mono/00G1.png", ErrInvalidFilename},
		{"mono/110000.png", ErrInvalidFilename},
		{"mono/0041 default.png", ErrInvalidFilename},
		{"mono/0041 ja,.png", ErrInvalidFilename},
		{"mono/0041 fr.png", ErrUndefinedNameFlavor},
		{"mono/.png", ErrInvalidFilename},
		{"mono/0042.png", bitmap.ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := ParseAsset(tree.Path(tt.file), "mono", []string{"ja", "ko"})
			require.ErrorIs(t, err, tt.want)
			require.ErrorContains(t, err, filepath.Base(tt.file))
		})
	}
}

func TestHexName(t *testing.T) {
	require.Equal(t, "notdef", HexName(NotdefCodePoint))
	require.Equal(t, "0041", HexName(0x41))
	require.Equal(t, "1F600", HexName(0x1F600))

	for _, hexName := range []string{"0041", "1F600", "notdef"} {
		codePoint, err := ParseHexName(hexName)
		require.NoError(t, err)
		require.Equal(t, hexName, HexName(codePoint))
	}

	for _, hexName := range []string{"", "-41", "+41", "0x41", "110000"} {
		_, err := ParseHexName(hexName)
		require.ErrorIs(t, err, ErrInvalidFilename, hexName)
	}
}

func TestAsset_Persist(t *testing.T) {
	tree := testutil.NewGlyphTree(t).WithGlyph("common/0041.png", testutil.Rows("#.#", ".#."))
	tree.Build()

	asset, err := ParseAsset(tree.Path("common/0041.png"), CommonDirFlavor, nil)
	require.NoError(t, err)
	require.NoError(t, asset.Persist())

	m, err := bitmap.Load(asset.Path())
	require.NoError(t, err)
	require.Equal(t, asset.Bitmap(), m)
	require.Equal(t, "common/0041.png", asset.String())
}
