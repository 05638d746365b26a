// Package sqlite stores glyph index snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/glyphkit/internal/log"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// DB wraps the index database connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the index database at path, backs up an
// existing file to path+".bak" and applies the schema.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := backup(path); err != nil {
		return nil, err
	}

	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplySchema(context.Background(), conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "Opened glyph index", "path", path)
	return &DB{conn: conn}, nil
}

// ApplySchema creates the index tables on conn. It is idempotent.
func ApplySchema(ctx context.Context, conn *sql.DB) error {
	return applySchema(ctx, conn, schemaFS)
}

// applySchema runs every schema/*.sql file of fsys in name order. Each file
// is executed whole, so statements may contain semicolons (trigger bodies).
func applySchema(ctx context.Context, conn *sql.DB, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list schema files: %w", err)
	}
	slices.Sort(files)

	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := conn.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", file, err)
		}
	}
	return nil
}

// backup copies an existing database file aside before the schema is applied.
func backup(path string) error {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create database backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write database backup: %w", err)
	}
	return dst.Close()
}

// Close releases the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// GlyphIndex returns the glyph index repository backed by this database.
func (db *DB) GlyphIndex() *GlyphIndex {
	return NewGlyphIndex(db.conn)
}
