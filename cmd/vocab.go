package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
)

var vocabWrite bool

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Detect the flavors used by the glyph tree",
	Long: `Scan the glyph tree without any declared vocabulary and list the dir
flavors and name flavors it uses. Declared flavors keep their priority
order; newly found ones are appended alphabetically.

With --write, the detected vocabularies are saved to the config file,
keeping its comments.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVocab(cmd.OutOrStdout(), cfg, configFilePath(), vocabWrite)
	},
}

func init() {
	vocabCmd.Flags().BoolVarP(&vocabWrite, "write", "w", false, "save the vocabularies to the config file")
	rootCmd.AddCommand(vocabCmd)
}

func runVocab(out io.Writer, c config.Config, configPath string, write bool) error {
	cat, err := catalog.Load(c.GlyphsDir, nil, nil)
	if err != nil {
		return fmt.Errorf("loading glyphs from %s: %w", c.GlyphsDir, err)
	}

	var dirFound, nameFound []string
	for _, asset := range cat.Assets() {
		if asset.DirFlavor() != catalog.CommonDirFlavor {
			dirFound = append(dirFound, asset.DirFlavor())
		}
		nameFound = append(nameFound, asset.NameFlavors()...)
	}
	dirFlavors := mergeVocabulary(c.DirFlavors, dirFound)
	nameFlavors := mergeVocabulary(c.NameFlavors, nameFound)

	_, _ = fmt.Fprintf(out, "dir_flavors:  %s\n", strings.Join(dirFlavors, ", "))
	_, _ = fmt.Fprintf(out, "name_flavors: %s\n", strings.Join(nameFlavors, ", "))

	if !write {
		return nil
	}
	if err := config.SaveVocabulary(configPath, dirFlavors, nameFlavors); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Saved vocabularies to %s\n", configPath)
	return nil
}

// mergeVocabulary keeps declared in order, dropping flavors no longer in
// use, and appends the remaining found flavors sorted.
func mergeVocabulary(declared, found []string) []string {
	merged := []string{}
	for _, flavor := range declared {
		if slices.Contains(found, flavor) && !slices.Contains(merged, flavor) {
			merged = append(merged, flavor)
		}
	}
	var extra []string
	for _, flavor := range found {
		if !slices.Contains(merged, flavor) && !slices.Contains(extra, flavor) {
			extra = append(extra, flavor)
		}
	}
	slices.Sort(extra)
	return append(merged, extra...)
}
