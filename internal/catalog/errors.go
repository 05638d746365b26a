package catalog

import (
	"errors"
	"fmt"
)

// Catalog errors
var (
	ErrInvalidExtension    = errors.New("glyph file is not a .png file")
	ErrInvalidFilename     = errors.New("invalid glyph file name")
	ErrUndefinedDirFlavor  = errors.New("undefined dir flavor")
	ErrUndefinedNameFlavor = errors.New("undefined name flavor")
	ErrDuplicateFlavor     = errors.New("glyph file flavor already exists")
	ErrDuplicatePath       = errors.New("glyph file duplicate")
	ErrNoDefaultFlavor     = errors.New("no default name flavor")
	ErrVocabularyRequired  = errors.New("name flavors must be defined")
	ErrCatalogQueried      = errors.New("catalog modified after it was queried")
)

// DuplicateFlavorError reports two assets claiming the same
// (code point, dir flavor, name flavor) slot.
type DuplicateFlavorError struct {
	NameFlavor   string
	Path         string
	ExistingPath string
}

func (e *DuplicateFlavorError) Error() string {
	return fmt.Sprintf("%s: name flavor %q:\n'%s'\n'%s'", ErrDuplicateFlavor, e.NameFlavor, e.Path, e.ExistingPath)
}

func (e *DuplicateFlavorError) Is(target error) bool {
	return target == ErrDuplicateFlavor
}

// DuplicatePathError reports a canonical path already occupied by another file.
type DuplicatePathError struct {
	Path    string
	OldPath string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("%s:\n'%s'\n'%s'", ErrDuplicatePath, e.Path, e.OldPath)
}

func (e *DuplicatePathError) Is(target error) bool {
	return target == ErrDuplicatePath
}

// NoDefaultFlavorError reports a code point with assets under a dir flavor
// but none resolvable for the requested name flavor.
type NoDefaultFlavorError struct {
	DirFlavor string
	CodePoint int
}

func (e *NoDefaultFlavorError) Error() string {
	return fmt.Sprintf("%s: dir flavor '%s' code point %s", ErrNoDefaultFlavor, e.DirFlavor, HexName(e.CodePoint))
}

func (e *NoDefaultFlavorError) Is(target error) bool {
	return target == ErrNoDefaultFlavor
}
