package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testAsset(codePoint int, dirFlavor, path string, nameFlavors ...string) *Asset {
	return &Asset{
		path:        path,
		codePoint:   codePoint,
		dirFlavor:   dirFlavor,
		nameFlavors: nameFlavors,
	}
}

func TestEntry_Register(t *testing.T) {
	e := NewEntry(0x41)
	a := testAsset(0x41, "mono", "mono/0041.png")
	ja := testAsset(0x41, "mono", "mono/0041 ja,ko.png", "ja", "ko")

	require.NoError(t, e.Register(a))
	require.NoError(t, e.Register(ja))
	require.Equal(t, []string{"default", "ja", "ko"}, e.NameFlavors("mono"))
	require.Equal(t, []*Asset{ja, a}, e.Assets())
}

func TestEntry_Register_DuplicateFlavor(t *testing.T) {
	e := NewEntry(0x41)
	ja := testAsset(0x41, "mono", "mono/0041 ja.png", "ja")
	koJa := testAsset(0x41, "mono", "mono/0041 ko,ja.png", "ko", "ja")
	require.NoError(t, e.Register(ja))

	err := e.Register(koJa)
	require.ErrorIs(t, err, ErrDuplicateFlavor)

	var dupErr *DuplicateFlavorError
	require.True(t, errors.As(err, &dupErr))
	require.Equal(t, "ja", dupErr.NameFlavor)
	require.Equal(t, koJa.path, dupErr.Path)
	require.Equal(t, ja.path, dupErr.ExistingPath)

	// Nothing of the rejected asset was inserted.
	require.Equal(t, []string{"ja"}, e.NameFlavors("mono"))
}

func TestEntry_Register_DuplicateDefault(t *testing.T) {
	e := NewEntry(0x41)
	require.NoError(t, e.Register(testAsset(0x41, "mono", "mono/a/0041.png")))
	require.ErrorIs(t, e.Register(testAsset(0x41, "mono", "mono/b/0041.png")), ErrDuplicateFlavor)

	// Same slot in another dir flavor is fine.
	require.NoError(t, e.Register(testAsset(0x41, "common", "common/0041.png")))
}

func TestEntry_Register_NeverOverwrites(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		vocabulary := []string{"a", "b", "c", "d"}
		e := NewEntry(0x41)
		owners := make(map[string]*Asset)

		n := rapid.IntRange(1, 8).Draw(rt, "n")
		for i := range n {
			tags := rapid.SliceOfDistinct(rapid.SampledFrom(vocabulary), rapid.ID[string]).Draw(rt, "tags")
			asset := testAsset(0x41, "mono", "mono/"+string(rune('a'+i))+".png", tags...)

			slots := tags
			if len(slots) == 0 {
				slots = []string{DefaultNameFlavor}
			}
			conflict := false
			for _, slot := range slots {
				if owners[slot] != nil {
					conflict = true
				}
			}

			err := e.Register(asset)
			if conflict {
				require.ErrorIs(rt, err, ErrDuplicateFlavor)
			} else {
				require.NoError(rt, err)
				for _, slot := range slots {
					owners[slot] = asset
				}
			}
		}

		for slot, owner := range owners {
			require.Same(rt, owner, e.Resolve("mono", slot))
		}
	})
}

func TestEntry_Resolve_Fallback(t *testing.T) {
	common := testAsset(0x41, CommonDirFlavor, "common/0041.png")
	mono := testAsset(0x41, "mono", "mono/0041.png")
	e := NewEntry(0x41)
	require.NoError(t, e.Register(common))
	require.NoError(t, e.Register(mono))

	require.Same(t, mono, e.Resolve("mono", "anything"))
	require.Same(t, mono, e.Resolve("mono", DefaultNameFlavor))
	require.Same(t, common, e.Resolve("proportional", "anything"))
	require.True(t, e.Covers("proportional"))

	onlyMono := NewEntry(0x42)
	require.NoError(t, onlyMono.Register(testAsset(0x42, "mono", "mono/0042.png")))
	require.Nil(t, onlyMono.Resolve("proportional", "ja"))
	require.False(t, onlyMono.Covers("proportional"))
}

func TestEntry_Resolve_NoDefault(t *testing.T) {
	e := NewEntry(0x41)
	ja := testAsset(0x41, "mono", "mono/0041 ja.png", "ja")
	require.NoError(t, e.Register(ja))

	require.Same(t, ja, e.Resolve("mono", "ja"))
	require.Nil(t, e.Resolve("mono", "ko"))
}

func TestEntry_PromoteDefault(t *testing.T) {
	e := NewEntry(0x41)
	ja := testAsset(0x41, "mono", "mono/0041 ja.png", "ja")
	ko := testAsset(0x41, "mono", "mono/0041 ko.png", "ko")
	require.NoError(t, e.Register(ko))
	require.NoError(t, e.Register(ja))

	e.PromoteDefault([]string{"ja", "ko"})

	require.Same(t, ja, e.Resolve("mono", "anything-unlisted"))
	require.Empty(t, ja.NameFlavors())
	require.Equal(t, "uni0041", ja.GlyphName())
	require.Same(t, ko, e.Resolve("mono", "ko"))
	require.Equal(t, []string{"ko"}, ko.NameFlavors())
	require.Equal(t, []string{"default", "ko"}, e.NameFlavors("mono"))
}

func TestEntry_PromoteDefault_MultiTagAsset(t *testing.T) {
	e := NewEntry(0x41)
	jaKo := testAsset(0x41, "mono", "mono/0041 ja,ko.png", "ja", "ko")
	require.NoError(t, e.Register(jaKo))

	e.PromoteDefault([]string{"zh", "ko", "ja"})

	require.Equal(t, []string{"default"}, e.NameFlavors("mono"))
	require.Same(t, jaKo, e.Resolve("mono", "ja"))
}

func TestEntry_PromoteDefault_KeepsExistingDefault(t *testing.T) {
	e := NewEntry(0x41)
	def := testAsset(0x41, "mono", "mono/0041.png")
	ja := testAsset(0x41, "mono", "mono/0041 ja.png", "ja")
	require.NoError(t, e.Register(def))
	require.NoError(t, e.Register(ja))

	e.PromoteDefault([]string{"ja"})

	require.Same(t, def, e.Resolve("mono", "ko"))
	require.Same(t, ja, e.Resolve("mono", "ja"))
	require.Equal(t, []string{"ja"}, ja.NameFlavors())
}

func TestEntry_PromoteDefault_NoVocabularyMatch(t *testing.T) {
	e := NewEntry(0x41)
	require.NoError(t, e.Register(testAsset(0x41, "mono", "mono/0041 ja.png", "ja")))

	e.PromoteDefault([]string{"ko"})

	require.Equal(t, []string{"ja"}, e.NameFlavors("mono"))
}
