package sqlite

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/glyphkit/internal/catalog"
)

// Run is one recorded snapshot of a catalog.
type Run struct {
	ID         string
	Root       string
	GlyphCount int
	CreatedAt  time.Time
}

// GlyphRecord is one asset as stored in a run.
type GlyphRecord struct {
	CodePoint   int
	HexName     string
	DirFlavor   string
	NameFlavors []string
	GlyphName   string
	Path        string
	Width       int
	Height      int
}

// runModel represents the database row for the runs table.
type runModel struct {
	ID         string
	Root       string
	GlyphCount int
	CreatedAt  int64 // Unix timestamp
}

// glyphModel represents the database row for the glyphs table.
type glyphModel struct {
	RunID       string
	CodePoint   int
	HexName     string
	DirFlavor   string
	NameFlavors string // JSON encoded
	GlyphName   string
	Path        string
	Width       int
	Height      int
}

func toGlyphModel(runID string, a *catalog.Asset) (glyphModel, error) {
	flavors := a.NameFlavors()
	if flavors == nil {
		flavors = []string{}
	}
	data, err := json.Marshal(flavors)
	if err != nil {
		return glyphModel{}, err
	}
	return glyphModel{
		RunID:       runID,
		CodePoint:   a.CodePoint(),
		HexName:     catalog.HexName(a.CodePoint()),
		DirFlavor:   a.DirFlavor(),
		NameFlavors: string(data),
		GlyphName:   a.GlyphName(),
		Path:        a.Path(),
		Width:       a.Width(),
		Height:      a.Height(),
	}, nil
}

func (m runModel) toRun() Run {
	return Run{
		ID:         m.ID,
		Root:       m.Root,
		GlyphCount: m.GlyphCount,
		CreatedAt:  time.Unix(m.CreatedAt, 0),
	}
}

func (m glyphModel) toRecord() (GlyphRecord, error) {
	var flavors []string
	if err := json.Unmarshal([]byte(m.NameFlavors), &flavors); err != nil {
		return GlyphRecord{}, err
	}
	return GlyphRecord{
		CodePoint:   m.CodePoint,
		HexName:     m.HexName,
		DirFlavor:   m.DirFlavor,
		NameFlavors: flavors,
		GlyphName:   m.GlyphName,
		Path:        m.Path,
		Width:       m.Width,
		Height:      m.Height,
	}, nil
}
