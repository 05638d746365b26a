package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/fontbuild"
	"github.com/zjrosen/glyphkit/internal/log"
	"github.com/zjrosen/glyphkit/internal/tracing"
)

var buildNoStandardize bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build one BDF font per dir flavor and name flavor",
	Long: `Load the glyph tree, standardize it, give every glyph a default name
flavor and write one BDF font per dir flavor and name flavor. With a
declared name vocabulary, each dir flavor also gets a collection font
holding every drawing its fonts use, once.

The outputs directory is deleted and recreated on every build.

Examples:
  glyphkit build                   # standardize and build
  glyphkit build --no-standardize  # build without touching the glyph tree`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBuild(cmd.Context(), cmd.OutOrStdout(), cfg, buildNoStandardize)
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildNoStandardize, "no-standardize", false, "leave the glyph tree untouched")
	rootCmd.AddCommand(buildCmd)
}

// newTracingProvider creates the trace provider for the tracing config.
func newTracingProvider(c config.TracingConfig) (*tracing.Provider, error) {
	filePath := c.FilePath
	if filePath == "" {
		filePath = config.DefaultTracesFilePath()
	}
	return tracing.NewProvider(tracing.Config{
		Enabled:      c.Enabled,
		Exporter:     c.Exporter,
		FilePath:     filePath,
		OTLPEndpoint: c.OTLPEndpoint,
		SampleRate:   c.SampleRate,
	})
}

func runBuild(ctx context.Context, out io.Writer, c config.Config, skipStandardize bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	provider, err := newTracingProvider(c.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if shutdownErr := provider.Shutdown(context.Background()); shutdownErr != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", shutdownErr)
		}
	}()

	builder := fontbuild.NewBuilder(c, provider.Tracer())
	result, err := builder.Build(ctx, fontbuild.Options{SkipStandardize: skipStandardize})
	if err != nil {
		return err
	}

	if len(result.Moves) > 0 {
		_, _ = fmt.Fprintf(out, "Moved %d glyph files\n", len(result.Moves))
	}
	for _, output := range result.Outputs {
		_, _ = fmt.Fprintf(out, "%-12s %-12s %5d glyphs  %s\n",
			output.DirFlavor, output.NameFlavor, output.Glyphs, output.Path)
	}
	for _, collection := range result.Collections {
		_, _ = fmt.Fprintf(out, "%-12s %-12s %5d glyphs  %s\n",
			collection.DirFlavor, "(all)", collection.Glyphs, collection.Path)
	}
	_, _ = fmt.Fprintf(out, "Built %d fonts and %d collections into %s\n", len(result.Outputs), len(result.Collections), c.OutputsDir)
	return nil
}
