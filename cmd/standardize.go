package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
)

var standardizeDryRun bool

var standardizeCmd = &cobra.Command{
	Use:   "standardize",
	Short: "Move glyph files to their canonical locations",
	Long: `Re-encode every glyph file, rename it to its canonical name and move it
under its Unicode block directory. Directories left empty are removed.

Examples:
  glyphkit standardize            # rewrite the glyph tree
  glyphkit standardize --dry-run  # show the moves without touching disk`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStandardize(cmd.OutOrStdout(), cfg, standardizeDryRun)
	},
}

func init() {
	standardizeCmd.Flags().BoolVarP(&standardizeDryRun, "dry-run", "n", false, "print the planned moves only")
	rootCmd.AddCommand(standardizeCmd)
}

var (
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	arrowStyle   = lipgloss.NewStyle().Faint(true)
)

func runStandardize(out io.Writer, c config.Config, dryRun bool) error {
	cat, err := loadCatalog(c)
	if err != nil {
		return err
	}

	if dryRun {
		moves, err := cat.Plan()
		if err != nil {
			return err
		}
		printPlan(out, cat.Root(), moves)
		return nil
	}

	moves, err := cat.Standardize()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Standardized %d glyph files, %d moved\n", cat.Len(), len(moves))
	return nil
}

// printPlan writes one line per move, highlighting the changed parts of
// each path.
func printPlan(out io.Writer, root string, moves []catalog.Move) {
	if len(moves) == 0 {
		_, _ = fmt.Fprintln(out, "Glyph tree is already standardized")
		return
	}

	froms := make([]string, len(moves))
	tos := make([]string, len(moves))
	width := 0
	for i, move := range moves {
		froms[i], tos[i] = diffPaths(relPath(root, move.From), relPath(root, move.To))
		width = max(width, ansi.StringWidth(froms[i]))
	}

	arrow := arrowStyle.Render("->")
	for i := range moves {
		pad := strings.Repeat(" ", width-ansi.StringWidth(froms[i]))
		_, _ = fmt.Fprintf(out, "%s%s %s %s\n", froms[i], pad, arrow, tos[i])
	}
	_, _ = fmt.Fprintf(out, "%d glyph files would move\n", len(moves))
}

// diffPaths renders from and to with deleted and inserted text styled.
func diffPaths(from, to string) (string, string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var before, after strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			before.WriteString(d.Text)
			after.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			before.WriteString(deletedStyle.Render(d.Text))
		case diffmatchpatch.DiffInsert:
			after.WriteString(addedStyle.Render(d.Text))
		}
	}
	return before.String(), after.String()
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
