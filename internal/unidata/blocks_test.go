package unidata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockOf(t *testing.T) {
	tests := []struct {
		r    rune
		want string
	}{
		{'A', "0000-007F Basic Latin"},
		{'é', "0080-00FF Latin-1 Supplement"},
		{'あ', "3040-309F Hiragana"},
		{'我', "4E00-9FFF CJK Unified Ideographs"},
		{0xAC00, "AC00-D7AF Hangul Syllables"},
		{0xFF01, "FF00-FFEF Halfwidth and Fullwidth Forms"},
		{0x1F600, "1F600-1F64F Emoticons"},
		{0x10FFFF, "100000-10FFFF Supplementary Private Use Area-B"},
	}
	for _, tt := range tests {
		block, ok := BlockOf(tt.r)
		require.True(t, ok, "%U", tt.r)
		require.Equal(t, tt.want, block.String())
	}
}

func TestBlockOf_NoBlock(t *testing.T) {
	// Between Vithkuqi and Linear A.
	_, ok := BlockOf(0x105C0)
	require.False(t, ok)
	_, ok = BlockOf(0x110000)
	require.False(t, ok)
}

func TestBlocks_SortedAndDisjoint(t *testing.T) {
	blocks := Blocks()
	require.Greater(t, len(blocks), 300)
	for i, b := range blocks {
		require.LessOrEqual(t, b.Start, b.End, b.Name)
		require.Zero(t, b.Start%16, b.Name)
		require.Equal(t, rune(15), b.End%16, b.Name)
		if i > 0 {
			require.Greater(t, b.Start, blocks[i-1].End, b.Name)
		}
	}
}

func TestParseBlocks_Errors(t *testing.T) {
	_, err := parseBlocks([]byte("0000..007F Basic Latin\n"))
	require.Error(t, err)

	_, err = parseBlocks([]byte("0000-007F; Basic Latin\n"))
	require.Error(t, err)

	_, err = parseBlocks([]byte("zzzz..007F; Basic Latin\n"))
	require.Error(t, err)
}
