package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/glyphkit/internal/catalog"
	"github.com/zjrosen/glyphkit/internal/config"
	"github.com/zjrosen/glyphkit/internal/log"
)

// defaultConfigPath is where a default config is written on first run.
const defaultConfigPath = ".glyphkit/config.yaml"

var (
	version     = "dev"
	cfgFile     string
	debugFlag   bool
	logFile     string
	noColorFlag bool

	cfg        config.Config
	cfgErr     error
	logCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "glyphkit",
	Short: "Manage a pixel glyph catalog and build bitmap fonts from it",
	Long: `glyphkit loads a tree of PNG glyph drawings, keeps it in a canonical
layout and builds one BDF font per dir flavor and name flavor.

Glyph files are named "<hex code point>[ <flavor>,<flavor>].png" and live
under a directory named after their dir flavor.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { logCleanup() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .glyphkit/config.yaml or ~/.config/glyphkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging (also GLYPHKIT_DEBUG)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write debug logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false,
		"disable colored output")
}

func initConfig() {
	cfg, cfgErr = loadConfig(viper.GetViper(), cfgFile)
}

// setDefaults registers every config default with v.
func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("glyphs_dir", defaults.GlyphsDir)
	v.SetDefault("outputs_dir", defaults.OutputsDir)
	v.SetDefault("font.family", defaults.Font.Family)
	v.SetDefault("font.version", defaults.Font.Version)
	v.SetDefault("font.size", defaults.Font.Size)
	v.SetDefault("index.db_path", defaults.Index.DBPath)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.standardize", defaults.Watch.Standardize)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
}

// loadConfig reads the configuration into a Config.
//
// Lookup order when no file is given:
//  1. .glyphkit/config.yaml (current directory)
//  2. ~/.config/glyphkit/config.yaml (user config)
//
// When neither exists a default config is written to .glyphkit/config.yaml.
func loadConfig(v *viper.Viper, path string) (config.Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		v.SetConfigFile(defaultConfigPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "glyphkit"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
		// If the write fails, continue with defaults.
		if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
			v.SetConfigFile(defaultConfigPath)
			_ = v.ReadInConfig()
		}
	}

	var loaded config.Config
	if err := v.Unmarshal(&loaded); err != nil {
		return config.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return loaded, nil
}

// configFilePath returns the file vocabulary changes are saved to.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}

func setup(_ *cobra.Command, _ []string) error {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if debugFlag || os.Getenv("GLYPHKIT_DEBUG") != "" {
		if logFile != "" {
			cleanup, err := log.Init(logFile)
			if err != nil {
				return fmt.Errorf("initializing logging: %w", err)
			}
			logCleanup = cleanup
		} else {
			log.InitWriter(os.Stderr, log.LevelDebug)
		}
		log.Info(log.CatConfig, "glyphkit starting", "version", version, "config", viper.ConfigFileUsed())
	}

	if cfgErr != nil {
		return cfgErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// loadCatalog loads the configured glyph tree with the declared vocabularies.
func loadCatalog(c config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(c.GlyphsDir, c.DirVocabulary(), c.NameVocabulary())
	if err != nil {
		return nil, fmt.Errorf("loading glyphs from %s: %w", c.GlyphsDir, err)
	}
	return cat, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
