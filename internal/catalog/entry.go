package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/zjrosen/glyphkit/internal/log"
)

// Entry holds every asset of one code point, keyed by dir flavor and then
// by name flavor (or DefaultNameFlavor for untagged assets).
type Entry struct {
	codePoint int
	registry  map[string]map[string]*Asset
}

// NewEntry creates an empty entry for codePoint.
func NewEntry(codePoint int) *Entry {
	return &Entry{
		codePoint: codePoint,
		registry:  make(map[string]map[string]*Asset),
	}
}

// CodePoint returns the entry's code point.
func (e *Entry) CodePoint() int { return e.codePoint }

// Register places asset under each of its name flavors, or under
// DefaultNameFlavor when it has none. Nothing is inserted when any target
// slot is already taken.
func (e *Entry) Register(asset *Asset) error {
	dirRegistry, ok := e.registry[asset.dirFlavor]
	if !ok {
		dirRegistry = make(map[string]*Asset)
		e.registry[asset.dirFlavor] = dirRegistry
	}

	slots := asset.nameFlavors
	if len(slots) == 0 {
		slots = []string{DefaultNameFlavor}
	}
	for _, nameFlavor := range slots {
		if existing, ok := dirRegistry[nameFlavor]; ok {
			return &DuplicateFlavorError{
				NameFlavor:   nameFlavor,
				Path:         asset.path,
				ExistingPath: existing.path,
			}
		}
	}
	for _, nameFlavor := range slots {
		dirRegistry[nameFlavor] = asset
	}
	return nil
}

// PromoteDefault fills a missing default slot in each dir flavor with the
// asset of the first vocabulary flavor present. The promoted asset loses
// all of its name flavors and holds only the default slot.
func (e *Entry) PromoteDefault(vocabulary []string) {
	for dirFlavor, dirRegistry := range e.registry {
		if _, ok := dirRegistry[DefaultNameFlavor]; ok {
			continue
		}
		for _, nameFlavor := range vocabulary {
			asset, ok := dirRegistry[nameFlavor]
			if !ok {
				continue
			}
			for _, held := range asset.nameFlavors {
				delete(dirRegistry, held)
			}
			asset.nameFlavors = nil
			dirRegistry[DefaultNameFlavor] = asset
			log.Debug(log.CatCatalog, "Promote glyph to default", "dir_flavor", dirFlavor, "from", nameFlavor, "path", asset.path)
			break
		}
	}
}

// Resolve returns the asset for the flavors, falling back to the common dir
// flavor when dirFlavor has no assets and to the default name flavor when
// nameFlavor has none. Returns nil when nothing applies.
func (e *Entry) Resolve(dirFlavor, nameFlavor string) *Asset {
	dirRegistry, ok := e.registry[dirFlavor]
	if !ok {
		dirRegistry, ok = e.registry[CommonDirFlavor]
		if !ok {
			return nil
		}
	}
	if asset, ok := dirRegistry[nameFlavor]; ok {
		return asset
	}
	return dirRegistry[DefaultNameFlavor]
}

// Covers reports whether the entry has assets under dirFlavor, directly or
// through the common fallback.
func (e *Entry) Covers(dirFlavor string) bool {
	if _, ok := e.registry[dirFlavor]; ok {
		return true
	}
	_, ok := e.registry[CommonDirFlavor]
	return ok
}

// DirFlavors returns the dir flavors holding assets, sorted.
func (e *Entry) DirFlavors() []string {
	flavors := make([]string, 0, len(e.registry))
	for dirFlavor := range e.registry {
		flavors = append(flavors, dirFlavor)
	}
	sort.Strings(flavors)
	return flavors
}

// NameFlavors returns the occupied slots of dirFlavor, sorted.
func (e *Entry) NameFlavors(dirFlavor string) []string {
	flavors := make([]string, 0, len(e.registry[dirFlavor]))
	for nameFlavor := range e.registry[dirFlavor] {
		flavors = append(flavors, nameFlavor)
	}
	sort.Strings(flavors)
	return flavors
}

// Assets returns each distinct asset once, ordered by dir flavor and path.
func (e *Entry) Assets() []*Asset {
	var assets []*Asset
	for _, dirFlavor := range e.DirFlavors() {
		var dirAssets []*Asset
		for _, asset := range e.registry[dirFlavor] {
			if !slices.Contains(dirAssets, asset) {
				dirAssets = append(dirAssets, asset)
			}
		}
		slices.SortFunc(dirAssets, func(a, b *Asset) int {
			return strings.Compare(a.path, b.path)
		})
		assets = append(assets, dirAssets...)
	}
	return assets
}
