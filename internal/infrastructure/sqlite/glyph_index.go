package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/log"
)

// ErrRunNotFound is returned when no matching run exists.
var ErrRunNotFound = errors.New("index run not found")

const glyphColumns = `run_id, code_point, hex_name, dir_flavor, name_flavors, glyph_name, path, width, height`

// GlyphIndex records catalog snapshots and answers lookups against them.
type GlyphIndex struct {
	db  *sql.DB
	now func() time.Time
}

// NewGlyphIndex creates a GlyphIndex on a connection whose schema has been
// applied with ApplySchema.
func NewGlyphIndex(db *sql.DB) *GlyphIndex {
	return &GlyphIndex{db: db, now: time.Now}
}

func scanGlyph(scanner interface{ Scan(...any) error }) (GlyphRecord, error) {
	var m glyphModel
	err := scanner.Scan(
		&m.RunID, &m.CodePoint, &m.HexName, &m.DirFlavor, &m.NameFlavors,
		&m.GlyphName, &m.Path, &m.Width, &m.Height,
	)
	if err != nil {
		return GlyphRecord{}, err
	}
	return m.toRecord()
}

// Record stores every asset of c as a new run. Paths are stored relative to
// the catalog root with forward slashes.
func (g *GlyphIndex) Record(ctx context.Context, c *catalog.Catalog) (Run, error) {
	assets := c.Assets()
	run := runModel{
		ID:         uuid.NewString(),
		Root:       c.Root(),
		GlyphCount: len(assets),
		CreatedAt:  g.now().Unix(),
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, root, glyph_count, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Root, run.GlyphCount, run.CreatedAt,
	); err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO glyphs (`+glyphColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("failed to prepare glyph insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, asset := range assets {
		m, err := toGlyphModel(run.ID, asset)
		if err != nil {
			return Run{}, fmt.Errorf("failed to encode %s: %w", asset.Path(), err)
		}
		if rel, err := filepath.Rel(c.Root(), m.Path); err == nil {
			m.Path = filepath.ToSlash(rel)
		}
		if _, err := stmt.ExecContext(ctx,
			m.RunID, m.CodePoint, m.HexName, m.DirFlavor, m.NameFlavors,
			m.GlyphName, m.Path, m.Width, m.Height,
		); err != nil {
			return Run{}, fmt.Errorf("failed to insert glyph %s: %w", m.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}

	log.Info(log.CatDB, "Recorded glyph index run", "run", run.ID, "glyphs", run.GlyphCount)
	return run.toRun(), nil
}

// LatestRun returns the most recently recorded run.
func (g *GlyphIndex) LatestRun(ctx context.Context) (Run, error) {
	var m runModel
	err := g.db.QueryRowContext(ctx,
		`SELECT id, root, glyph_count, created_at FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&m.ID, &m.Root, &m.GlyphCount, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to find latest run: %w", err)
	}
	return m.toRun(), nil
}

// Runs lists every run, newest first.
func (g *GlyphIndex) Runs(ctx context.Context) ([]Run, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, root, glyph_count, created_at FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var m runModel
		if err := rows.Scan(&m.ID, &m.Root, &m.GlyphCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, m.toRun())
	}
	return runs, rows.Err()
}

// Glyphs returns the glyphs of a run ordered by path.
func (g *GlyphIndex) Glyphs(ctx context.Context, runID string) ([]GlyphRecord, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT `+glyphColumns+` FROM glyphs WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list glyphs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []GlyphRecord
	for rows.Next() {
		rec, err := scanGlyph(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan glyph: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindByCodePoint returns the glyphs of a run for one code point, ordered
// by dir flavor then path.
func (g *GlyphIndex) FindByCodePoint(ctx context.Context, runID string, codePoint int) ([]GlyphRecord, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT `+glyphColumns+` FROM glyphs WHERE run_id = ? AND code_point = ? ORDER BY dir_flavor, path`,
		runID, codePoint)
	if err != nil {
		return nil, fmt.Errorf("failed to find glyphs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []GlyphRecord
	for rows.Next() {
		rec, err := scanGlyph(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan glyph: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes all but the newest keep runs and their glyphs. It returns
// the number of runs removed.
func (g *GlyphIndex) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := g.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	// Connections opened without foreign_keys(1) do not cascade.
	if _, err := g.db.ExecContext(ctx,
		`DELETE FROM glyphs WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
		return 0, fmt.Errorf("failed to prune glyphs: %w", err)
	}
	if n > 0 {
		log.Debug(log.CatDB, "Pruned glyph index runs", "removed", n)
	}
	return int(n), nil
}
