package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/zjrosen/glyphkit/internal/log"
	"github.com/zjrosen/glyphkit/internal/unidata"
)

const (
	// cjkUnifiedIdeographsStart begins the one block large enough to be split
	// further by the leading hex digits of the code point.
	cjkUnifiedIdeographsStart = 0x4E00

	noBlockDirName = "No_Block"
)

// housekeepingFiles are created by desktop file managers and never hold glyphs.
var housekeepingFiles = []string{".DS_Store", "Thumbs.db", "desktop.ini"}

// Move is one file rename performed (or planned) by standardization.
type Move struct {
	Asset *Asset
	From  string
	To    string
}

// CanonicalPath returns the standardized location of asset:
//
//	<root>/<dir flavor>/<XXXX-YYYY Block Name>[/<XX>-]/<file name>
//
// The notdef glyph sits directly in its dir flavor directory. Glyphs of the
// CJK Unified Ideographs block get one more level keyed by all but the last
// two hex digits.
func (c *Catalog) CanonicalPath(asset *Asset) string {
	fileDir := filepath.Join(c.root, asset.dirFlavor)
	if asset.codePoint != NotdefCodePoint {
		block, ok := unidata.BlockOf(rune(asset.codePoint))
		if !ok {
			fileDir = filepath.Join(fileDir, noBlockDirName)
		} else {
			fileDir = filepath.Join(fileDir, block.String())
			if block.Start == cjkUnifiedIdeographsStart {
				hexName := HexName(asset.codePoint)
				fileDir = filepath.Join(fileDir, hexName[:len(hexName)-2]+"-")
			}
		}
	}
	return filepath.Join(fileDir, asset.FileName())
}

// Plan returns the moves Standardize would perform, without touching disk.
// It fails the same way Standardize would on an occupied target.
func (c *Catalog) Plan() ([]Move, error) {
	var moves []Move
	for _, asset := range c.Assets() {
		to := c.CanonicalPath(asset)
		if to == asset.path {
			continue
		}
		if err := checkTarget(asset.path, to); err != nil {
			return moves, err
		}
		moves = append(moves, Move{Asset: asset, From: asset.path, To: to})
	}
	return moves, nil
}

// Standardize re-encodes every glyph file, moves it to its canonical path
// and removes directories left empty. It returns the moves performed.
func (c *Catalog) Standardize() ([]Move, error) {
	if c.queried {
		return nil, ErrCatalogQueried
	}

	var moves []Move
	for _, asset := range c.Assets() {
		if err := asset.Persist(); err != nil {
			return moves, err
		}

		from, to := asset.path, c.CanonicalPath(asset)
		if to == from {
			continue
		}
		if err := checkTarget(from, to); err != nil {
			return moves, err
		}
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return moves, fmt.Errorf("creating glyph dir: %w", err)
		}
		if err := os.Rename(from, to); err != nil {
			return moves, fmt.Errorf("moving glyph file: %w", err)
		}

		asset.path = to
		delete(c.paths, from)
		c.paths[to] = asset
		moves = append(moves, Move{Asset: asset, From: from, To: to})
		log.Debug(log.CatCatalog, "Fix glyph file path", "from", from, "to", to)
	}

	if err := c.removeEmptyDirs(); err != nil {
		return moves, err
	}

	log.Info(log.CatCatalog, "Standardized glyph files", "files", len(c.paths), "moved", len(moves))
	return moves, nil
}

// checkTarget fails when to exists and is not the file at from (a case-only
// rename on a case-insensitive file system targets the same file).
func checkTarget(from, to string) error {
	toInfo, err := os.Stat(to)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	fromInfo, err := os.Stat(from)
	if err != nil {
		return err
	}
	if !os.SameFile(fromInfo, toInfo) {
		return &DuplicatePathError{Path: to, OldPath: from}
	}
	return nil
}

// removeEmptyDirs walks the tree bottom-up, deleting housekeeping files and
// then every directory that is empty. The root and hidden directories are
// kept untouched.
func (c *Catalog) removeEmptyDirs() error {
	var dirs []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == c.root {
			return nil
		}
		if isHidden(d.Name()) {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return err
	}

	// Reversed pre-order visits every directory after its descendants.
	slices.Reverse(dirs)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		remaining := 0
		for _, e := range entries {
			if !e.IsDir() && slices.Contains(housekeepingFiles, e.Name()) {
				if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
					return err
				}
				continue
			}
			remaining++
		}
		if remaining == 0 {
			if err := os.Remove(dir); err != nil {
				return err
			}
			log.Debug(log.CatCatalog, "Remove empty glyph dir", "dir", dir)
		}
	}
	return nil
}
