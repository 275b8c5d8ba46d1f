package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/colx/pkg/collection"
)

const editMenuYAML = `name: Edit menu
items:
  - id: undo
    text: Undo
  - type: separator
  - id: clipboard
    title: Clipboard
    items:
      - {id: cut, text: Cut}
      - {id: copy, text: Copy, label: Copy selection}
`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"json object", `{"items": []}`, FormatJSON},
		{"json array", `[{"text": "a"}]`, FormatJSON},
		{"toml section", "name = \"x\"\n[[items]]\ntext = \"a\"", FormatTOML},
		{"toml key values", "name = \"x\"\ntitle = \"y\"", FormatTOML},
		{"yaml", editMenuYAML, FormatYAML},
		{"yaml list", "- text: a\n- text: b", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat([]byte(tt.input)))
		})
	}
}

func TestIsLikelyTOML(t *testing.T) {
	assert.True(t, isLikelyTOML("[server]\nhost = \"localhost\""))
	assert.True(t, isLikelyTOML("[server.\"host.name\"]"))
	assert.False(t, isLikelyTOML("[1, 2, 3]"))
	assert.False(t, isLikelyTOML("key: value\nother: thing"))
	assert.False(t, isLikelyTOML("# only a comment"))
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"yaml", editMenuYAML, FormatYAML},
		{"json", `{"name": "Edit menu", "items": [
			{"id": "undo", "text": "Undo"},
			{"type": "separator"},
			{"id": "clipboard", "title": "Clipboard", "items": [
				{"id": "cut", "text": "Cut"},
				{"id": "copy", "text": "Copy", "label": "Copy selection"}
			]}
		]}`, FormatJSON},
		{"toml", `name = "Edit menu"

[[items]]
id = "undo"
text = "Undo"

[[items]]
type = "separator"

[[items]]
id = "clipboard"
title = "Clipboard"

  [[items.items]]
  id = "cut"
  text = "Cut"

  [[items.items]]
  id = "copy"
  text = "Copy"
  label = "Copy selection"
`, FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.format, DetectFormat([]byte(tt.input)))
			doc, err := Decode([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, "Edit menu", doc.Name)
			require.Len(t, doc.Items, 3)
			assert.Equal(t, "separator", doc.Items[1].Type)
			require.Len(t, doc.Items[2].Items, 2)
			assert.Equal(t, "Copy selection", doc.Items[2].Items[1].Label)
		})
	}
}

func TestDecodeBareList(t *testing.T) {
	doc, err := Decode([]byte("- text: a\n- text: b"), FormatYAML)
	require.NoError(t, err)
	assert.Len(t, doc.Items, 2)

	doc, err = Decode([]byte(`[{"text": "a"}]`), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, doc.Items, 1)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		want   string
	}{
		{"empty", "   ", FormatYAML, "empty input"},
		{"bad json", `{"items": [}`, FormatJSON, "invalid JSON"},
		{"bad toml", "[[items]\n", FormatTOML, "invalid TOML"},
		{"yaml scalar", "just text", FormatYAML, "expected a mapping"},
		{"unknown format", "a: b", Format("xml"), "unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadBytes(t *testing.T) {
	c, doc, err := LoadBytes([]byte(editMenuYAML))
	require.NoError(t, err)
	assert.Equal(t, "Edit menu", doc.Name)
	assert.True(t, c.Frozen())
	assert.Equal(t, collection.Key("undo"), c.FirstKey())
	assert.Equal(t, collection.Key("copy"), c.LastKey())
}

func TestLoadReader(t *testing.T) {
	c, _, err := LoadReader(strings.NewReader(`[{"id": "a", "text": "A"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Size())
}

func TestLoadFileHonorsExtension(t *testing.T) {
	dir := t.TempDir()

	// Would be detected as TOML without the extension.
	path := filepath.Join(dir, "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items = \"none\""), 0o600))
	_, _, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")

	path = filepath.Join(dir, "menu.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[items]]\ntext = \"a = b\"\n"), 0o600))
	c, _, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a = b", c.Item("0").TextValue)

	path = filepath.Join(dir, "menu.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{"items": [{"text": "x"}]}`), 0o600))
	c, _, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Size())

	_, _, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path = filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "a"}, {"id": "a"}]`), 0o600))
	_, _, err = LoadFile(path)
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "dup.json")
}
