// Package loader reads menu and listbox documents (YAML, JSON or TOML) and
// builds them into committed collections.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/colx/pkg/collection"
)

// Format names a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Document is the on-disk shape of a collection.
type Document struct {
	Name  string  `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Items []Entry `json:"items" yaml:"items" toml:"items"`
}

// Entry is one node in a document. Items under a section become its
// children; items under an item become tree children.
type Entry struct {
	ID    string  `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Type  string  `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Text  string  `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Title string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Value any     `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Items []Entry `json:"items,omitempty" yaml:"items,omitempty" toml:"items,omitempty"`
}

// LoadFile reads and builds the document at path. The file extension picks
// the format when it is one of .json, .yaml, .yml or .toml.
func LoadFile(path string) (*collection.Collection, *Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	format, ok := formatFromExt(path)
	if !ok {
		format = DetectFormat(data)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	c, err := Build(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, doc, nil
}

// LoadReader reads all of r and builds it, auto-detecting the format.
func LoadReader(r io.Reader) (*collection.Collection, *Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes and builds data, auto-detecting the format.
func LoadBytes(data []byte) (*collection.Collection, *Document, error) {
	doc, err := Decode(data, DetectFormat(data))
	if err != nil {
		return nil, nil, err
	}
	c, err := Build(doc)
	if err != nil {
		return nil, nil, err
	}
	return c, doc, nil
}

// Decode parses data in the given format. A bare list of entries is
// accepted in JSON and YAML as shorthand for a document with only items.
func Decode(data []byte, format Format) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatTOML:
		var doc Document
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return &doc, nil
	case FormatYAML, "":
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func decodeJSON(data []byte) (*Document, error) {
	if data[0] == '[' {
		var items []Entry
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return &Document{Items: items}, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &doc, nil
}

func decodeYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("invalid YAML: no document found")
	}

	body := root.Content[0]
	switch body.Kind {
	case yaml.SequenceNode:
		var items []Entry
		if err := body.Decode(&items); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return &Document{Items: items}, nil
	case yaml.MappingNode:
		var doc Document
		if err := body.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return &doc, nil
	}
	return nil, fmt.Errorf("invalid YAML: expected a mapping or a list of entries")
}

// DetectFormat guesses the encoding of data: TOML when it has section
// headers or mostly key = value lines, JSON when it starts with { or [,
// YAML otherwise.
func DetectFormat(data []byte) Format {
	input := strings.TrimSpace(string(data))
	// TOML before JSON: [section] headers look like JSON arrays.
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

func formatFromExt(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

var (
	// [section], [[array]], ["quoted"], [dotted.key]; not [1, 2, 3].
	tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// key = value, not key: value.
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++

		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
