package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/zjrosen/glyphkit/internal/cachemanager"
	"github.com/zjrosen/glyphkit/internal/log"
)

// mappingQuery selects one character mapping.
type mappingQuery struct {
	dirFlavor  string
	nameFlavor string
}

// glyphListQuery selects one glyph list.
type glyphListQuery struct {
	dirFlavor   string
	nameFlavors []string
}

// Catalog owns every glyph asset below a root directory.
type Catalog struct {
	root           string
	dirVocabulary  []string
	nameVocabulary []string

	entries map[int]*Entry
	paths   map[string]*Asset
	queried bool

	sequences  *cachemanager.ReadThroughCache[string, []int, string]
	alphabets  *cachemanager.ReadThroughCache[string, []rune, string]
	mappings   *cachemanager.ReadThroughCache[string, map[rune]string, mappingQuery]
	glyphLists *cachemanager.ReadThroughCache[string, []*Asset, glyphListQuery]
}

func newCatalog(root string, dirVocabulary, nameVocabulary []string) *Catalog {
	c := &Catalog{
		root:           root,
		dirVocabulary:  dirVocabulary,
		nameVocabulary: nameVocabulary,
		entries:        make(map[int]*Entry),
		paths:          make(map[string]*Asset),
	}
	c.sequences = cachemanager.NewReadThroughCache[string, []int, string](
		cachemanager.NewMemo[string, []int]("sequence"), c.computeSequence, false)
	c.alphabets = cachemanager.NewReadThroughCache[string, []rune, string](
		cachemanager.NewMemo[string, []rune]("alphabet"), c.computeAlphabet, false)
	c.mappings = cachemanager.NewReadThroughCache[string, map[rune]string, mappingQuery](
		cachemanager.NewMemo[string, map[rune]string]("character-mapping"), c.computeCharacterMapping, false)
	c.glyphLists = cachemanager.NewReadThroughCache[string, []*Asset, glyphListQuery](
		cachemanager.NewMemo[string, []*Asset]("glyph-list"), c.computeGlyphList, false)
	return c
}

// Load scans root: every immediate subdirectory is a dir flavor and every
// .png file below it a glyph asset. A nil vocabulary disables validation of
// that flavor axis. Load either returns a fully validated catalog or fails.
func Load(root string, dirVocabulary, nameVocabulary []string) (*Catalog, error) {
	root = filepath.Clean(root)
	c := newCatalog(root, dirVocabulary, nameVocabulary)

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading glyphs dir: %w", err)
	}
	for _, d := range dirEntries {
		if !d.IsDir() || isHidden(d.Name()) {
			continue
		}
		dirFlavor := d.Name()
		if err := c.validateDirFlavor(dirFlavor); err != nil {
			return nil, err
		}
		if err := c.loadDirFlavor(dirFlavor); err != nil {
			return nil, err
		}
	}

	log.Info(log.CatCatalog, "Loaded glyph catalog", "root", root, "code_points", len(c.entries), "files", len(c.paths))
	return c, nil
}

func (c *Catalog) loadDirFlavor(dirFlavor string) error {
	return filepath.WalkDir(filepath.Join(c.root, dirFlavor), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if isHidden(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !isGlyphFile(d.Name()) {
			return nil
		}

		asset, err := ParseAsset(path, dirFlavor, c.nameVocabulary)
		if err != nil {
			return err
		}
		entry, ok := c.entries[asset.codePoint]
		if !ok {
			entry = NewEntry(asset.codePoint)
			c.entries[asset.codePoint] = entry
		}
		if err := entry.Register(asset); err != nil {
			return err
		}
		c.paths[path] = asset
		return nil
	})
}

// cacheKey joins quoted parts, so flavors holding the separator or quotes
// cannot collide.
func cacheKey(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = strconv.Quote(part)
	}
	return strings.Join(quoted, "|")
}

// isHidden reports whether a directory is left out of the glyph tree.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isGlyphFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), glyphFileExt)
}

// Root returns the catalog root directory.
func (c *Catalog) Root() string { return c.root }

// DirVocabulary returns the declared dir flavors, or nil.
func (c *Catalog) DirVocabulary() []string { return slices.Clone(c.dirVocabulary) }

// NameVocabulary returns the declared name flavors in priority order, or nil.
func (c *Catalog) NameVocabulary() []string { return slices.Clone(c.nameVocabulary) }

// Len returns the number of loaded glyph files.
func (c *Catalog) Len() int { return len(c.paths) }

// Entry returns the entry of codePoint.
func (c *Catalog) Entry(codePoint int) (*Entry, bool) {
	e, ok := c.entries[codePoint]
	return e, ok
}

// Assets returns every loaded asset ordered by path.
func (c *Catalog) Assets() []*Asset {
	paths := slices.Sorted(maps.Keys(c.paths))
	assets := make([]*Asset, len(paths))
	for i, path := range paths {
		assets[i] = c.paths[path]
	}
	return assets
}

// AssetAt returns the asset currently stored at path.
func (c *Catalog) AssetAt(path string) (*Asset, bool) {
	a, ok := c.paths[filepath.Clean(path)]
	return a, ok
}

// DirFlavors returns the dir flavors that hold at least one asset, sorted.
func (c *Catalog) DirFlavors() []string {
	seen := make(map[string]bool)
	for _, asset := range c.paths {
		seen[asset.dirFlavor] = true
	}
	return slices.Sorted(maps.Keys(seen))
}

// FallbackDefaults gives every dir flavor of every entry a default asset,
// promoting the highest priority name flavor present where none exists.
func (c *Catalog) FallbackDefaults() error {
	if c.nameVocabulary == nil {
		return ErrVocabularyRequired
	}
	if c.queried {
		return ErrCatalogQueried
	}
	for _, entry := range c.entries {
		entry.PromoteDefault(c.nameVocabulary)
	}
	return nil
}

// Sequence returns the ascending code points with an asset resolvable under
// dirFlavor, including NotdefCodePoint when present.
func (c *Catalog) Sequence(dirFlavor string) ([]int, error) {
	if err := c.validateDirFlavor(dirFlavor); err != nil {
		return nil, err
	}
	c.queried = true
	seq, err := c.sequences.Get(context.Background(), dirFlavor, dirFlavor, cachemanager.NoExpiration)
	if err != nil {
		return nil, err
	}
	return slices.Clone(seq), nil
}

func (c *Catalog) computeSequence(_ context.Context, dirFlavor string) ([]int, error) {
	seq := make([]int, 0, len(c.entries))
	for codePoint, entry := range c.entries {
		if entry.Covers(dirFlavor) {
			seq = append(seq, codePoint)
		}
	}
	sort.Ints(seq)
	return seq, nil
}

// Alphabet returns Sequence(dirFlavor) as characters, without .notdef.
func (c *Catalog) Alphabet(dirFlavor string) ([]rune, error) {
	if err := c.validateDirFlavor(dirFlavor); err != nil {
		return nil, err
	}
	c.queried = true
	alphabet, err := c.alphabets.Get(context.Background(), dirFlavor, dirFlavor, cachemanager.NoExpiration)
	if err != nil {
		return nil, err
	}
	return slices.Clone(alphabet), nil
}

func (c *Catalog) computeAlphabet(_ context.Context, dirFlavor string) ([]rune, error) {
	seq, err := c.Sequence(dirFlavor)
	if err != nil {
		return nil, err
	}
	alphabet := make([]rune, 0, len(seq))
	for _, codePoint := range seq {
		if codePoint != NotdefCodePoint {
			alphabet = append(alphabet, rune(codePoint))
		}
	}
	return alphabet, nil
}

// CharacterMapping maps every character of dirFlavor to the glyph name of
// its asset for nameFlavor.
func (c *Catalog) CharacterMapping(dirFlavor, nameFlavor string) (map[rune]string, error) {
	if err := c.validateDirFlavor(dirFlavor); err != nil {
		return nil, err
	}
	if err := c.validateNameFlavor(nameFlavor); err != nil {
		return nil, err
	}
	c.queried = true
	key := cacheKey(dirFlavor, nameFlavor)
	mapping, err := c.mappings.Get(context.Background(), key, mappingQuery{dirFlavor, nameFlavor}, cachemanager.NoExpiration)
	if err != nil {
		return nil, err
	}
	return maps.Clone(mapping), nil
}

func (c *Catalog) computeCharacterMapping(_ context.Context, q mappingQuery) (map[rune]string, error) {
	seq, err := c.Sequence(q.dirFlavor)
	if err != nil {
		return nil, err
	}
	mapping := make(map[rune]string, len(seq))
	for _, codePoint := range seq {
		if codePoint < 0 {
			continue
		}
		asset := c.entries[codePoint].Resolve(q.dirFlavor, q.nameFlavor)
		if asset == nil {
			return nil, &NoDefaultFlavorError{DirFlavor: q.dirFlavor, CodePoint: codePoint}
		}
		mapping[rune(codePoint)] = asset.GlyphName()
	}
	return mapping, nil
}

// GlyphList returns the assets needed to cover every name flavor in
// nameFlavors (the whole name vocabulary when nil) under dirFlavor. Each
// asset appears once, in the order it is first encountered.
func (c *Catalog) GlyphList(dirFlavor string, nameFlavors []string) ([]*Asset, error) {
	if err := c.validateDirFlavor(dirFlavor); err != nil {
		return nil, err
	}
	if nameFlavors == nil {
		if c.nameVocabulary == nil {
			return nil, ErrVocabularyRequired
		}
		nameFlavors = c.nameVocabulary
	}
	for _, nameFlavor := range nameFlavors {
		if err := c.validateNameFlavor(nameFlavor); err != nil {
			return nil, err
		}
	}
	c.queried = true
	key := cacheKey(append([]string{dirFlavor}, nameFlavors...)...)
	glyphs, err := c.glyphLists.Get(context.Background(), key, glyphListQuery{dirFlavor, slices.Clone(nameFlavors)}, cachemanager.NoExpiration)
	if err != nil {
		return nil, err
	}
	return slices.Clone(glyphs), nil
}

func (c *Catalog) computeGlyphList(_ context.Context, q glyphListQuery) ([]*Asset, error) {
	seq, err := c.Sequence(q.dirFlavor)
	if err != nil {
		return nil, err
	}
	var glyphs []*Asset
	seen := make(map[*Asset]bool)
	for _, nameFlavor := range q.nameFlavors {
		for _, codePoint := range seq {
			asset := c.entries[codePoint].Resolve(q.dirFlavor, nameFlavor)
			if asset == nil || seen[asset] {
				continue
			}
			seen[asset] = true
			glyphs = append(glyphs, asset)
		}
	}
	return glyphs, nil
}
