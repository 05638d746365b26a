package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/log"
	"github.com/zjrosen/glyphkit/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Validate the glyph tree whenever it changes",
	Long: `Watch the glyph tree and reload it after every change, reporting the
first problem found. With watch.standardize enabled in the config, the tree
is also standardized whenever a glyph file is out of place.

Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, out io.Writer, c config.Config) error {
	w, err := watcher.New(watcher.Config{
		Root:     c.GlyphsDir,
		Debounce: c.Watch.Debounce,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Watching %s\n", c.GlyphsDir)
	return watchLoop(ctx, out, c, changes)
}

// watchLoop checks the tree once, then again after every change signal,
// until ctx is done.
func watchLoop(ctx context.Context, out io.Writer, c config.Config, changes <-chan struct{}) error {
	checkTree(out, c)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			checkTree(out, c)
		}
	}
}

// checkTree loads a fresh catalog and reports the result. The tree is
// standardized only while a move is pending, so the rewrite's own events
// settle after one more check.
func checkTree(out io.Writer, c config.Config) {
	stamp := time.Now().Format("15:04:05")

	cat, err := loadCatalog(c)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Glyph tree is invalid", err)
		_, _ = fmt.Fprintf(out, "%s %s\n", stamp, missingStyle.Render("error: "+err.Error()))
		return
	}

	moved := 0
	if c.Watch.Standardize {
		plan, err := cat.Plan()
		if err == nil && len(plan) > 0 {
			var performed []catalog.Move
			performed, err = cat.Standardize()
			moved = len(performed)
		}
		if err != nil {
			log.ErrorErr(log.CatWatcher, "Standardize failed", err)
			_, _ = fmt.Fprintf(out, "%s %s\n", stamp, missingStyle.Render("error: "+err.Error()))
			return
		}
	}

	if moved > 0 {
		_, _ = fmt.Fprintf(out, "%s ok: %d glyph files, %d moved\n", stamp, cat.Len(), moved)
		return
	}
	_, _ = fmt.Fprintf(out, "%s ok: %d glyph files\n", stamp, cat.Len())
}
