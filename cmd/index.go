package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/infrastructure/sqlite"
)

var (
	indexDBPath string
	indexKeep   int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Record the glyph catalog in a SQLite index",
	Long: `Load the glyph tree and record every glyph file as a new run in a SQLite
database, so coverage can be queried and compared over time.

Examples:
  glyphkit index                     # use index.db_path from the config
  glyphkit index --db /tmp/glyphs.db
  glyphkit index --keep 5            # drop all but the five newest runs`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runIndex(cmd.Context(), cmd.OutOrStdout(), cfg, indexDBPath, indexKeep)
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexDBPath, "db", "", "index database path (overrides config)")
	indexCmd.Flags().IntVar(&indexKeep, "keep", 0, "keep only the newest N runs (0 keeps all)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context, out io.Writer, c config.Config, dbPath string, keep int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if dbPath == "" {
		dbPath = c.Index.DBPath
	}

	cat, err := loadCatalog(c)
	if err != nil {
		return err
	}

	db, err := sqlite.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening index %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	index := db.GlyphIndex()
	run, err := index.Record(ctx, cat)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Recorded %d glyphs as run %s in %s\n", run.GlyphCount, run.ID, dbPath)

	if keep > 0 {
		removed, err := index.Prune(ctx, keep)
		if err != nil {
			return err
		}
		if removed > 0 {
			_, _ = fmt.Fprintf(out, "Pruned %d old runs\n", removed)
		}
	}
	return nil
}
