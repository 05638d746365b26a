package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, configPath string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSaveVocabulary_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveVocabulary(configPath, []string{"mono"}, []string{"ja", "ko"})
	require.NoError(t, err)

	cfg := readConfig(t, configPath)
	require.Equal(t, []string{"mono"}, cfg.DirFlavors)
	require.Equal(t, []string{"ja", "ko"}, cfg.NameFlavors)
}

func TestSaveVocabulary_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# project glyphs
glyphs_dir: art/glyphs # relative to the project
name_flavors:
  - old
font:
  family: Keep Me
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	require.NoError(t, SaveVocabulary(configPath, nil, []string{"zh_cn", "ja"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# project glyphs")
	assert.NotContains(t, content, "old")
	assert.NotContains(t, content, "dir_flavors")

	cfg := readConfig(t, configPath)
	require.Equal(t, "art/glyphs", cfg.GlyphsDir)
	require.Equal(t, "Keep Me", cfg.Font.Family)
	require.Equal(t, []string{"zh_cn", "ja"}, cfg.NameFlavors)
}

func TestSaveVocabulary_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	require.NoError(t, SaveVocabulary(configPath, []string{"mono"}, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), ".glyphkit.yaml.tmp."), "temp file left behind: %s", e.Name())
	}
}

func TestSaveVocabulary_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", ".glyphkit", "config.yaml")

	require.NoError(t, SaveVocabulary(configPath, []string{"mono"}, nil))
	require.FileExists(t, configPath)
}

func TestSaveVocabulary_RejectsNonMapping(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o644))

	err := SaveVocabulary(configPath, []string{"mono"}, nil)
	require.ErrorContains(t, err, "not a mapping")
}
