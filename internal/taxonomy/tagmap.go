package taxonomy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_tag_map.yaml
var defaultTagMap []byte

// CategoryTags is one entry of a tag map: a category display name and its
// ordered tags.
type CategoryTags struct {
	Category string
	Tags     []string
}

// TagMap keeps categories in file order.
type TagMap []CategoryTags

// DefaultTagMap returns the built-in map for the seeded categories.
func DefaultTagMap() TagMap {
	m, err := ParseTagMap(defaultTagMap, "yaml")
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded tag map: %v", err))
	}
	return m
}

// LoadTagMap reads a JSON or YAML tag map, chosen by extension. An empty path
// returns the default map.
func LoadTagMap(path string) (TagMap, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTagMap(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag map: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	m, err := ParseTagMap(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse tag map %s: %w", path, err)
	}
	return m, nil
}

// ParseTagMap decodes a category -> tags mapping without losing category order.
func ParseTagMap(data []byte, format string) (TagMap, error) {
	switch strings.ToLower(format) {
	case "json":
		return parseJSON(data)
	case "yaml", "yml":
		return parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported tag map format %q", format)
	}
}

func parseYAML(data []byte) (TagMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return TagMap{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("tag map must be a mapping")
	}
	out := make(TagMap, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		var tags []string
		if err := root.Content[i+1].Decode(&tags); err != nil {
			return nil, fmt.Errorf("category %q: %w", root.Content[i].Value, err)
		}
		out = append(out, CategoryTags{Category: root.Content[i].Value, Tags: tags})
	}
	return out, nil
}

// parseJSON walks the token stream; decoding into a map would lose order.
func parseJSON(data []byte) (TagMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("tag map must be an object")
	}
	var out TagMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var tags []string
		if err := dec.Decode(&tags); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		out = append(out, CategoryTags{Category: name, Tags: tags})
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return out, nil
}
