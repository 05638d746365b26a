package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
)

// inspectOptions selects what the inspect report covers.
type inspectOptions struct {
	DirFlavor  string
	NameFlavor string
	Text       string
	Width      int
}

var inspectOpts inspectOptions

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report glyph coverage per flavor",
	Long: `Print a coverage table for every dir flavor and name flavor followed by
the alphabet of each dir flavor. With --text, also list the characters of
the text that a dir flavor cannot draw.

Examples:
  glyphkit inspect
  glyphkit inspect --dir-flavor mono --name-flavor ja
  glyphkit inspect --text "返回 Back"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInspect(cmd.OutOrStdout(), cfg, inspectOpts)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectOpts.DirFlavor, "dir-flavor", "", "only report this dir flavor")
	inspectCmd.Flags().StringVar(&inspectOpts.NameFlavor, "name-flavor", "", "only report this name flavor")
	inspectCmd.Flags().StringVar(&inspectOpts.Text, "text", "", "check that this text can be drawn")
	inspectCmd.Flags().IntVar(&inspectOpts.Width, "width", 64, "wrap alphabets at this display width")
	rootCmd.AddCommand(inspectCmd)
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sectionStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	missingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func runInspect(out io.Writer, c config.Config, opts inspectOptions) error {
	cat, err := loadCatalog(c)
	if err != nil {
		return err
	}
	if c.NameVocabulary() != nil {
		if err := cat.FallbackDefaults(); err != nil {
			return err
		}
	}

	dirFlavors := cat.DirFlavors()
	if opts.DirFlavor != "" {
		dirFlavors = []string{opts.DirFlavor}
	}
	nameFlavors := c.NameVocabulary()
	if nameFlavors == nil {
		nameFlavors = []string{catalog.DefaultNameFlavor}
	}
	if opts.NameFlavor != "" {
		nameFlavors = []string{opts.NameFlavor}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("DIR FLAVOR", "NAME FLAVOR", "CHARACTERS", "GLYPHS", "STATUS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	for _, dirFlavor := range dirFlavors {
		for _, nameFlavor := range nameFlavors {
			row, err := coverageRow(cat, dirFlavor, nameFlavor)
			if err != nil {
				return err
			}
			t.Row(row...)
		}
	}
	_, _ = fmt.Fprintln(out, t.String())

	for _, dirFlavor := range dirFlavors {
		alphabet, err := cat.Alphabet(dirFlavor)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "\n%s (%d characters)\n", sectionStyle.Render(dirFlavor), len(alphabet))
		lines := wrapRunes(alphabet, opts.Width)
		if len(lines) > 0 {
			_, _ = fmt.Fprintln(out, indent.String(strings.Join(lines, "\n"), 2))
		}
	}

	if opts.Text != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", sectionStyle.Render("Text coverage"))
		for _, dirFlavor := range dirFlavors {
			alphabet, err := cat.Alphabet(dirFlavor)
			if err != nil {
				return err
			}
			missing := missingClusters(opts.Text, alphabet)
			if len(missing) == 0 {
				_, _ = fmt.Fprintf(out, "  %s: complete\n", dirFlavor)
				continue
			}
			_, _ = fmt.Fprintf(out, "  %s: missing %s\n", dirFlavor, missingStyle.Render(strings.Join(missing, " ")))
		}
	}
	return nil
}

// coverageRow returns the table cells of one flavor pair. Flavor errors are
// returned; a missing default is reported in the status column.
func coverageRow(cat *catalog.Catalog, dirFlavor, nameFlavor string) ([]string, error) {
	row := []string{dirFlavor, nameFlavor, "-", "-", "ok"}

	glyphs, err := cat.GlyphList(dirFlavor, []string{nameFlavor})
	if err != nil {
		return nil, err
	}
	row[3] = fmt.Sprint(len(glyphs))

	mapping, err := cat.CharacterMapping(dirFlavor, nameFlavor)
	var noDefault *catalog.NoDefaultFlavorError
	switch {
	case errors.As(err, &noDefault):
		row[4] = fmt.Sprintf("no default for U+%04X", noDefault.CodePoint)
	case err != nil:
		return nil, err
	default:
		row[2] = fmt.Sprint(len(mapping))
	}
	return row, nil
}

// wrapRunes breaks runes into lines no wider than width terminal cells.
// Wide characters count as two cells.
func wrapRunes(runes []rune, width int) []string {
	if len(runes) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{string(runes)}
	}

	var (
		lines   []string
		line    strings.Builder
		current int
	)
	for _, r := range runes {
		w := runewidth.RuneWidth(r)
		if current > 0 && current+w > width {
			lines = append(lines, line.String())
			line.Reset()
			current = 0
		}
		line.WriteRune(r)
		current += w
	}
	return append(lines, line.String())
}

// missingClusters returns the distinct grapheme clusters of text that use a
// character outside alphabet, in order of first appearance. Whitespace is
// ignored.
func missingClusters(text string, alphabet []rune) []string {
	var missing []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		if strings.TrimSpace(cluster) == "" || slices.Contains(missing, cluster) {
			continue
		}
		for _, r := range g.Runes() {
			if !slices.Contains(alphabet, r) {
				missing = append(missing, cluster)
				break
			}
		}
	}
	return missing
}
