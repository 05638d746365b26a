package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glyphkit/internal/bitmap"
)

func TestGlyphTree_WritesGlyphs(t *testing.T) {
	tree := NewGlyphTree(t).
		WithGlyph("common/0041.png", Rows("#.", ".#")).
		WithFile("common/.DS_Store", []byte("x")).
		WithDir("mono/empty")
	root := tree.Build()

	m, err := bitmap.Load(tree.Path("common/0041.png"))
	require.NoError(t, err)
	require.Equal(t, bitmap.Bitmap{{1, 0}, {0, 1}}, m)

	require.FileExists(t, tree.Path("common/.DS_Store"))
	require.DirExists(t, tree.Path("mono/empty"))
	require.Equal(t, root, tree.Root())
}

func TestGlyphTree_OpaqueGlyphIsSolid(t *testing.T) {
	tree := NewGlyphTree(t).WithGlyph("common/0041.png", Rows("#.", ".#"), Opaque())
	tree.Build()

	m, err := bitmap.Load(tree.Path("common/0041.png"))
	require.NoError(t, err)
	require.Equal(t, bitmap.Bitmap{{1, 1}, {1, 1}}, m)
}

func TestGlyphTree_Raw(t *testing.T) {
	tree := NewGlyphTree(t).WithGlyph("common/0041.png", Raw([]byte("not a png")))
	tree.Build()

	data, err := os.ReadFile(tree.Path("common/0041.png"))
	require.NoError(t, err)
	require.Equal(t, "not a png", string(data))
}

func TestCells(t *testing.T) {
	require.Equal(t, bitmap.Bitmap{{0, 1, 0}, {1, 1, 1}}, Cells(".#.", "###"))
}

func TestNewTestDB(t *testing.T) {
	db := NewTestDB(t)
	var one int
	require.NoError(t, db.QueryRow(`SELECT 1`).Scan(&one))
	require.Equal(t, 1, one)
}
