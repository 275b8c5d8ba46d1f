// Package config loads the colx configuration: the embedded defaults with
// an optional user file merged on top.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/colx/internal/formatter"
	"github.com/oakwood-commons/colx/pkg/match"
	"github.com/oakwood-commons/colx/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     File
	embeddedConfigErr  error
)

// File is the configuration file schema.
type File struct {
	Filter FilterConfig `yaml:"filter"`
	Output OutputConfig `yaml:"output"`
	UI     UIConfig     `yaml:"ui"`
	Theme  ThemeBlock   `yaml:"theme"`
}

// FilterConfig holds default matching options.
type FilterConfig struct {
	Mode        string `yaml:"mode"`
	Sensitivity string `yaml:"sensitivity"`
	DebounceMS  int    `yaml:"debounce_ms"`
}

// OutputConfig holds default rendering options.
type OutputConfig struct {
	Format string     `yaml:"format"`
	Tree   TreeConfig `yaml:"tree"`
	List   ListConfig `yaml:"list"`
}

type TreeConfig struct {
	ShowKeys bool `yaml:"show_keys"`
	MaxDepth int  `yaml:"max_depth"`
}

type ListConfig struct {
	ShowKeys bool `yaml:"show_keys"`
	KeyWidth int  `yaml:"key_width"`
}

// UIConfig holds interactive mode options.
type UIConfig struct {
	WrapFocus bool   `yaml:"wrap_focus"`
	LogFile   string `yaml:"log_file"`
}

// ThemeBlock selects a theme by name from Themes.
type ThemeBlock struct {
	Default string                 `yaml:"default"`
	Themes  map[string]ThemeConfig `yaml:"themes"`
}

// ThemeConfig holds colors as ANSI codes ("12") or hex ("#005FAF").
type ThemeConfig struct {
	Header    string `yaml:"header,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Text      string `yaml:"text,omitempty"`
	Separator string `yaml:"separator,omitempty"`
	Focus     string `yaml:"focus,omitempty"`
}

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
func Default() (File, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return embeddedConfig.clone(), embeddedConfigErr
}

func (f File) clone() File {
	themes := make(map[string]ThemeConfig, len(f.Theme.Themes))
	for k, v := range f.Theme.Themes {
		themes[k] = v
	}
	f.Theme.Themes = themes
	return f
}

// DefaultPath returns $XDG_CONFIG_HOME/colx/config.yaml, falling back to
// the OS user config dir.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, settings.CliBinaryName, "config.yaml")
}

// Load returns the defaults merged with the file at path. An empty path
// tries DefaultPath and silently skips it when missing; an explicit path
// must exist.
func Load(path string) (File, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	// Decoding into the populated defaults keeps every field the user file
	// does not mention. Themes merge per color.
	user := File{}
	if err := yaml.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	themes := cfg.Theme.Themes
	cfg.Theme.Themes = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.Theme.Themes = mergeThemes(themes, user.Theme.Themes)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func mergeThemes(base, overrides map[string]ThemeConfig) map[string]ThemeConfig {
	out := make(map[string]ThemeConfig, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for name, o := range overrides {
		t := out[name]
		if o.Header != "" {
			t.Header = o.Header
		}
		if o.Key != "" {
			t.Key = o.Key
		}
		if o.Text != "" {
			t.Text = o.Text
		}
		if o.Separator != "" {
			t.Separator = o.Separator
		}
		if o.Focus != "" {
			t.Focus = o.Focus
		}
		out[name] = t
	}
	return out
}

// Validate checks option values.
func (f File) Validate() error {
	if _, err := match.ParseMode(f.Filter.Mode); err != nil {
		return err
	}
	if _, err := match.ParseSensitivity(f.Filter.Sensitivity); err != nil {
		return err
	}
	if f.Filter.DebounceMS < 0 {
		return fmt.Errorf("filter.debounce_ms must be non-negative, got %d", f.Filter.DebounceMS)
	}
	if err := formatter.ValidateFormat(f.Output.Format); err != nil {
		return err
	}
	if f.Output.List.KeyWidth < 0 || f.Output.Tree.MaxDepth < 0 {
		return fmt.Errorf("output widths and depths must be non-negative")
	}
	if _, ok := f.Theme.Themes[f.Theme.Default]; !ok {
		return fmt.Errorf("theme %q not found: available themes are %v", f.Theme.Default, f.ThemeNames())
	}
	return nil
}

// ThemeNames lists the configured themes in sorted order.
func (f File) ThemeNames() []string {
	names := make([]string, 0, len(f.Theme.Themes))
	for name := range f.Theme.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Colors resolves the named theme (the default when name is empty) into
// formatter colors. Unset colors stay nil so formatter defaults apply.
func (f File) Colors(name string) (formatter.Colors, error) {
	if name == "" {
		name = f.Theme.Default
	}
	t, ok := f.Theme.Themes[name]
	if !ok {
		return formatter.Colors{}, fmt.Errorf("theme %q not found: available themes are %v", name, f.ThemeNames())
	}
	var c formatter.Colors
	if t.Header != "" {
		c.Header = lipgloss.Color(t.Header)
	}
	if t.Key != "" {
		c.Key = lipgloss.Color(t.Key)
	}
	if t.Text != "" {
		c.Text = lipgloss.Color(t.Text)
	}
	if t.Separator != "" {
		c.Separator = lipgloss.Color(t.Separator)
	}
	if t.Focus != "" {
		c.Focus = lipgloss.Color(t.Focus)
	}
	return c, nil
}

// Marshal renders cfg as YAML for `colx config`.
func Marshal(cfg File) ([]byte, error) {
	return yaml.Marshal(cfg)
}
