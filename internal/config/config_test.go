package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "contains", cfg.Filter.Mode)
	assert.Equal(t, "base", cfg.Filter.Sensitivity)
	assert.Equal(t, 150, cfg.Filter.DebounceMS)
	assert.Equal(t, "tree", cfg.Output.Format)
	assert.Equal(t, "dark", cfg.Theme.Default)
	assert.Equal(t, []string{"dark", "light"}, cfg.ThemeNames())
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	a.Theme.Themes["dark"] = ThemeConfig{}
	b, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "12", b.Theme.Themes["dark"].Header)
}

func TestDefaultConfigYAMLIsCopy(t *testing.T) {
	data := DefaultConfigYAML()
	require.NotEmpty(t, data)
	data[0] = 'X'
	assert.NotEqual(t, byte('X'), DefaultConfigYAML()[0])
}

func TestLoadMergesUserFile(t *testing.T) {
	path := writeConfig(t, `filter:
  mode: fuzzy
output:
  list:
    key_width: 12
theme:
  default: midnight
  themes:
    midnight:
      key: "#00ff00"
    dark:
      focus: "9"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fuzzy", cfg.Filter.Mode)
	assert.Equal(t, "base", cfg.Filter.Sensitivity, "unset values keep their defaults")
	assert.Equal(t, 150, cfg.Filter.DebounceMS)
	assert.Equal(t, 12, cfg.Output.List.KeyWidth)
	assert.Equal(t, "tree", cfg.Output.Format)

	assert.Equal(t, "midnight", cfg.Theme.Default)
	assert.Equal(t, ThemeConfig{Key: "#00ff00"}, cfg.Theme.Themes["midnight"])
	dark := cfg.Theme.Themes["dark"]
	assert.Equal(t, "9", dark.Focus)
	assert.Equal(t, "12", dark.Header, "theme overrides merge per color")
	assert.Contains(t, cfg.Theme.Themes, "light")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad mode", "filter:\n  mode: regex\n", "invalid match mode"},
		{"bad sensitivity", "filter:\n  sensitivity: loose\n", "invalid sensitivity"},
		{"bad format", "output:\n  format: xml\n", "invalid output format"},
		{"negative debounce", "filter:\n  debounce_ms: -1\n", "debounce_ms"},
		{"unknown theme", "theme:\n  default: neon\n", `theme "neon" not found`},
		{"bad yaml", "filter: [", "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err, "missing default file is not an error")
	assert.Equal(t, "contains", cfg.Filter.Mode)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "colx"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "colx", "config.yaml"), []byte("filter:\n  mode: prefix\n"), 0o600))
	assert.Equal(t, filepath.Join(dir, "colx", "config.yaml"), DefaultPath())

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefix", cfg.Filter.Mode)
}

func TestColors(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	c, err := cfg.Colors("")
	require.NoError(t, err)
	assert.NotNil(t, c.Header)
	assert.NotNil(t, c.Focus)

	cfg.Theme.Themes["sparse"] = ThemeConfig{Key: "#00ff00"}
	c, err = cfg.Colors("sparse")
	require.NoError(t, err)
	assert.NotNil(t, c.Key)
	assert.Nil(t, c.Header)

	_, err = cfg.Colors("neon")
	assert.ErrorContains(t, err, "available themes")
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	data, err := Marshal(cfg)
	require.NoError(t, err)

	var back File
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)
}
