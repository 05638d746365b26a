package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/preview"
)

// previewOptions holds the preview command flags.
type previewOptions struct {
	Text       string
	Out        string
	DirFlavor  string
	NameFlavor string
	Scale      int
}

var previewOpts previewOptions

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a text specimen to a PNG image",
	Long: `Draw text with the glyphs one flavor pair selects, the same way built
fonts place them. Characters without a glyph are drawn as .notdef.

Examples:
  glyphkit preview --text "返回" --out specimen.png
  glyphkit preview --text "Hello" --dir-flavor mono --scale 8 --out hello.png`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPreview(cmd.OutOrStdout(), cfg, previewOpts)
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOpts.Text, "text", "t", "", "text to render (required)")
	previewCmd.Flags().StringVarP(&previewOpts.Out, "out", "o", "preview.png", "output PNG file")
	previewCmd.Flags().StringVar(&previewOpts.DirFlavor, "dir-flavor", catalog.CommonDirFlavor, "dir flavor to draw with")
	previewCmd.Flags().StringVar(&previewOpts.NameFlavor, "name-flavor", catalog.DefaultNameFlavor, "name flavor to draw with")
	previewCmd.Flags().IntVar(&previewOpts.Scale, "scale", 4, "integer upscale factor")
	_ = previewCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(out io.Writer, c config.Config, opts previewOptions) error {
	if opts.Scale < 1 {
		return fmt.Errorf("scale must be at least 1, got %d", opts.Scale)
	}

	cat, err := loadCatalog(c)
	if err != nil {
		return err
	}
	if c.NameVocabulary() != nil {
		if err := cat.FallbackDefaults(); err != nil {
			return err
		}
	}

	img, err := preview.Render(cat, opts.Text, preview.Options{
		DirFlavor:  opts.DirFlavor,
		NameFlavor: opts.NameFlavor,
		Metrics:    c.Font.MetricsFor(opts.DirFlavor),
		Scale:      opts.Scale,
		Padding:    1,
	})
	if err != nil {
		return err
	}
	if err := preview.WritePNG(opts.Out, img); err != nil {
		return err
	}

	b := img.Bounds()
	_, _ = fmt.Fprintf(out, "Wrote %dx%d preview to %s\n", b.Dx(), b.Dy(), opts.Out)
	return nil
}
