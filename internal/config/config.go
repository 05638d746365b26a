// Package config provides configuration types and defaults for glyphkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/zjrosen/glyphkit/internal/log"
)

// Config holds all configuration options for glyphkit.
type Config struct {
	GlyphsDir   string        `mapstructure:"glyphs_dir"`
	OutputsDir  string        `mapstructure:"outputs_dir"`
	DirFlavors  []string      `mapstructure:"dir_flavors"`  // empty = accept any dir flavor
	NameFlavors []string      `mapstructure:"name_flavors"` // priority order, empty = accept any
	Font        FontConfig    `mapstructure:"font"`
	Index       IndexConfig   `mapstructure:"index"`
	Watch       WatchConfig   `mapstructure:"watch"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// FontConfig holds the font properties written to built fonts. Metrics are
// taken verbatim; glyphkit makes no metric decisions of its own.
type FontConfig struct {
	Family  string `mapstructure:"family"`
	Version string `mapstructure:"version"`
	Size    int    `mapstructure:"size"` // pixel size of the em square

	// Metrics is keyed by dir flavor. The "common" entry applies to dir
	// flavors without their own.
	Metrics map[string]MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds vertical metrics in pixels.
type MetricsConfig struct {
	Ascent    int `mapstructure:"ascent"`
	Descent   int `mapstructure:"descent"` // pixels below the baseline, positive
	XHeight   int `mapstructure:"x_height"`
	CapHeight int `mapstructure:"cap_height"`
}

// IndexConfig holds the glyph index export settings.
type IndexConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	Standardize bool          `mapstructure:"standardize"` // standardize after every change
}

// TracingConfig holds distributed tracing configuration for font builds.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/glyphkit/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DirVocabulary returns the declared dir flavors, or nil when none are
// declared.
func (c Config) DirVocabulary() []string {
	if len(c.DirFlavors) == 0 {
		return nil
	}
	return slices.Clone(c.DirFlavors)
}

// NameVocabulary returns the declared name flavors, or nil when none are
// declared.
func (c Config) NameVocabulary() []string {
	if len(c.NameFlavors) == 0 {
		return nil
	}
	return slices.Clone(c.NameFlavors)
}

// MetricsFor returns the metrics of dirFlavor, falling back to the common
// metrics and then to metrics derived from the font size.
func (f FontConfig) MetricsFor(dirFlavor string) MetricsConfig {
	if m, ok := f.Metrics[dirFlavor]; ok {
		return m
	}
	if m, ok := f.Metrics["common"]; ok {
		return m
	}
	descent := f.Size / 6
	return MetricsConfig{
		Ascent:    f.Size - descent,
		Descent:   descent,
		XHeight:   f.Size / 2,
		CapHeight: f.Size - descent - 1,
	}
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/glyphkit/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "glyphkit", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		GlyphsDir:  "assets/glyphs",
		OutputsDir: "build/outputs",
		Font: FontConfig{
			Family:  "Glyphkit Pixel",
			Version: "1.0.0",
			Size:    12,
		},
		Index: IndexConfig{
			DBPath: "build/glyphs.db",
		},
		Watch: WatchConfig{
			Debounce:    200 * time.Millisecond,
			Standardize: false,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func Validate(cfg Config) error {
	if cfg.GlyphsDir == "" {
		return fmt.Errorf("glyphs_dir is required")
	}
	if cfg.OutputsDir == "" {
		return fmt.Errorf("outputs_dir is required")
	}
	if err := validateFlavors("dir_flavors", cfg.DirFlavors, ""); err != nil {
		return err
	}
	if err := validateFlavors("name_flavors", cfg.NameFlavors, "default"); err != nil {
		return err
	}
	if err := ValidateFont(cfg.Font); err != nil {
		return err
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", cfg.Watch.Debounce)
	}
	return ValidateTracing(cfg.Tracing)
}

// validateFlavors rejects empty, duplicate and reserved flavor names.
func validateFlavors(key string, flavors []string, reserved string) error {
	for i, flavor := range flavors {
		if flavor == "" {
			return fmt.Errorf("%s[%d]: flavor must not be empty", key, i)
		}
		if flavor == reserved {
			return fmt.Errorf("%s[%d]: %q is reserved", key, i, flavor)
		}
		if slices.Index(flavors, flavor) != i {
			return fmt.Errorf("%s[%d]: duplicate flavor %q", key, i, flavor)
		}
	}
	return nil
}

// ValidateFont checks font configuration for errors.
func ValidateFont(font FontConfig) error {
	if font.Size <= 0 {
		return fmt.Errorf("font.size must be positive, got %d", font.Size)
	}
	for dirFlavor, m := range font.Metrics {
		if m.Ascent <= 0 {
			return fmt.Errorf("font.metrics.%s.ascent must be positive, got %d", dirFlavor, m.Ascent)
		}
		if m.Descent < 0 {
			return fmt.Errorf("font.metrics.%s.descent must not be negative, got %d", dirFlavor, m.Descent)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# glyphkit configuration

# Glyph source tree. Every immediate subdirectory is a dir flavor.
glyphs_dir: assets/glyphs

# Built fonts are written here. The directory is recreated on every build.
outputs_dir: build/outputs

# Declared dir flavors (width modes). "common" is always accepted and is
# the fallback for every other dir flavor. Leave empty to accept any.
# dir_flavors:
#   - monospaced
#   - proportional

# Declared name flavors in priority order. The first one present becomes
# the default drawing when a glyph has no untagged file.
# Leave empty to accept any tag (fallback defaults then unavailable).
# name_flavors:
#   - latin
#   - zh_cn
#   - zh_hk
#   - zh_tw
#   - ja
#   - ko

# Font properties, written verbatim to built fonts
font:
  family: Glyphkit Pixel
  version: 1.0.0
  size: 12
  # Vertical metrics per dir flavor ("common" applies to the rest)
  # metrics:
  #   common:
  #     ascent: 10
  #     descent: 2
  #     x_height: 5
  #     cap_height: 7

# Glyph index export (glyphkit index)
index:
  db_path: build/glyphs.db

# File watching (glyphkit watch)
watch:
  debounce: 200ms
  standardize: false    # Standardize the tree after every change

# Distributed tracing of font builds
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/glyphkit/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
