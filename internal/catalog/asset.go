package catalog

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/zjrosen/glyphkit/internal/bitmap"
)

const (
	// CommonDirFlavor is the reserved fallback directory flavor.
	CommonDirFlavor = "common"
	// DefaultNameFlavor is the reserved fallback name flavor.
	DefaultNameFlavor = "default"
	// NotdefCodePoint identifies the .notdef glyph.
	NotdefCodePoint = -1

	hexNameNotdef = "notdef"
	glyphFileExt  = ".png"
)

// Asset is one glyph file: its identity, its decoded bitmap and the path it
// currently lives at. The path is not part of the identity.
type Asset struct {
	path        string
	codePoint   int
	dirFlavor   string
	nameFlavors []string
	bitmap      bitmap.Bitmap
}

// ParseAsset parses a glyph file name and decodes its bitmap. When
// nameVocabulary is non-nil, every name flavor must be listed in it and the
// flavors are reordered into vocabulary order.
func ParseAsset(path, dirFlavor string, nameVocabulary []string) (*Asset, error) {
	fileName := strings.ToLower(filepath.Base(path))
	if !strings.HasSuffix(fileName, glyphFileExt) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidExtension, path)
	}
	hexName, flavorList, hasFlavors := strings.Cut(strings.TrimSuffix(fileName, glyphFileExt), " ")

	codePoint, err := ParseHexName(strings.TrimSpace(hexName))
	if err != nil {
		return nil, fmt.Errorf("%w: '%s'", err, path)
	}

	var nameFlavors []string
	if hasFlavors {
		for _, nameFlavor := range strings.Split(flavorList, ",") {
			nameFlavor = strings.TrimSpace(nameFlavor)
			if nameFlavor == "" || nameFlavor == DefaultNameFlavor {
				return nil, fmt.Errorf("%w: name flavor %q: '%s'", ErrInvalidFilename, nameFlavor, path)
			}
			if nameVocabulary != nil && !slices.Contains(nameVocabulary, nameFlavor) {
				return nil, fmt.Errorf("%w '%s': '%s'", ErrUndefinedNameFlavor, nameFlavor, path)
			}
			if !slices.Contains(nameFlavors, nameFlavor) {
				nameFlavors = append(nameFlavors, nameFlavor)
			}
		}
		if nameVocabulary != nil {
			slices.SortStableFunc(nameFlavors, func(a, b string) int {
				return slices.Index(nameVocabulary, a) - slices.Index(nameVocabulary, b)
			})
		}
	}

	m, err := bitmap.Load(path)
	if err != nil {
		return nil, err
	}

	return &Asset{
		path:        path,
		codePoint:   codePoint,
		dirFlavor:   dirFlavor,
		nameFlavors: nameFlavors,
		bitmap:      m,
	}, nil
}

// ParseHexName converts a hex name ("0041" or "notdef") to a code point.
func ParseHexName(hexName string) (int, error) {
	if hexName == hexNameNotdef {
		return NotdefCodePoint, nil
	}
	if hexName == "" || strings.ContainsFunc(hexName, func(r rune) bool { return !isHexDigit(r) }) {
		return 0, fmt.Errorf("%w: hex name %q", ErrInvalidFilename, hexName)
	}
	v, err := strconv.ParseInt(hexName, 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, fmt.Errorf("%w: code point %q out of range", ErrInvalidFilename, hexName)
	}
	return int(v), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// HexName converts a code point to its hex name ("0041" or "notdef").
func HexName(codePoint int) string {
	if codePoint == NotdefCodePoint {
		return hexNameNotdef
	}
	return fmt.Sprintf("%04X", codePoint)
}

// Path returns the file the asset currently lives at.
func (a *Asset) Path() string { return a.path }

// CodePoint returns the code point, or NotdefCodePoint.
func (a *Asset) CodePoint() int { return a.codePoint }

// DirFlavor returns the directory flavor the asset was loaded from.
func (a *Asset) DirFlavor() string { return a.dirFlavor }

// NameFlavors returns the asset's name flavors in priority order.
func (a *Asset) NameFlavors() []string { return slices.Clone(a.nameFlavors) }

// Bitmap returns the decoded glyph cells.
func (a *Asset) Bitmap() bitmap.Bitmap { return a.bitmap }

// Width returns the bitmap width in pixels.
func (a *Asset) Width() int { return a.bitmap.Width() }

// Height returns the bitmap height in pixels.
func (a *Asset) Height() int { return a.bitmap.Height() }

// GlyphName returns the name used for the glyph in emitted fonts:
// ".notdef" or "uniXXXX", suffixed with "-<flavor>" for the highest
// priority name flavor.
func (a *Asset) GlyphName() string {
	var name string
	if a.codePoint == NotdefCodePoint {
		name = ".notdef"
	} else {
		name = fmt.Sprintf("uni%04X", a.codePoint)
	}
	if len(a.nameFlavors) > 0 {
		name += "-" + a.nameFlavors[0]
	}
	return name
}

// FileName returns the canonical file name, e.g. "0041 ja,ko.png".
func (a *Asset) FileName() string {
	name := HexName(a.codePoint)
	if len(a.nameFlavors) > 0 {
		name += " " + strings.Join(a.nameFlavors, ",")
	}
	return name + glyphFileExt
}

// Persist re-encodes the bitmap to the asset's current path.
func (a *Asset) Persist() error {
	return bitmap.Save(a.path, a.bitmap)
}

func (a *Asset) String() string {
	return fmt.Sprintf("%s/%s", a.dirFlavor, a.FileName())
}
