// Package menufile loads menu trees from YAML or JSON files validated
// against an embedded JSON Schema.
package menufile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mefu/internal/menu"
)

// ErrInvalidMenu is wrapped by every schema violation.
var ErrInvalidMenu = errors.New("invalid menu file")

//go:embed menu.schema.json
var schemaJSON []byte

var schema = gojsonschema.NewBytesLoader(schemaJSON)

// File is the document shape: {menu: {items: [...]}}.
type File struct {
	Menu struct {
		IncludePlugins bool        `json:"include_plugins" yaml:"include_plugins"`
		Items          []menu.Item `json:"items" yaml:"items"`
	} `json:"menu" yaml:"menu"`
}

// Load reads and validates the menu file at path. JSON is a subset of
// YAML, so both parse the same way.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Parse validates data against the schema and decodes it.
func Parse(data []byte) (*File, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMenu, err)
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMenu, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidMenu, strings.Join(msgs, "; "))
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMenu, err)
	}
	return &f, nil
}

// Handlers returns every handler name referenced by items, depth first.
func Handlers(items []menu.Item) []string {
	var out []string
	for _, it := range items {
		if it.HasChildren() {
			out = append(out, Handlers(it.Children)...)
			continue
		}
		if it.Handler != "" {
			out = append(out, it.Handler)
		}
	}
	return out
}
