package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// DirFlavors and NameFlavors are the vocabularies used by the sample tree.
var (
	DirFlavors  = []string{"mono", "proportional"}
	NameFlavors = []string{"zh_cn", "zh_hk", "zh_tw", "ja", "ko"}
)

// SampleTree writes the reference layout used across tests:
//
//	common/0041.png
//	mono/0041.png
//	mono/8FD4 zh_cn.png
//	mono/8FD4 zh_hk,zh_tw.png
//	mono/8FD4 ja,ko.png
//	common/notdef.png
//
// 8FD4 has no default drawing in mono until defaults fall back.
func SampleTree(t *testing.T) *GlyphTree {
	t.Helper()
	tree := NewGlyphTree(t).
		WithGlyph("common/0041.png", Rows(".#.", "#.#", "###")).
		WithGlyph("mono/0041.png", Rows("#.", "##")).
		WithGlyph("mono/8FD4 zh_cn.png", Rows("#..", "...")).
		WithGlyph("mono/8FD4 zh_hk,zh_tw.png", Rows(".#.", "...")).
		WithGlyph("mono/8FD4 ja,ko.png", Rows("..#", "...")).
		WithGlyph("common/notdef.png", Rows("###", "#.#", "###"))
	tree.Build()
	return tree
}

// OpaquePNG encodes a white RGB image of the given size, which carries no
// alpha channel.
func OpaquePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	if width == 0 || height == 0 {
		width, height = 1, 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
