package devtree

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument indicates a YAML document with no content.
var ErrEmptyDocument = errors.New("empty document")

// Parse parses a YAML profile into a description tree. The returned root
// node is named "/".
func Parse(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: root must be a mapping", root.Line)
	}

	return buildNode("/", root)
}

// Load parses a YAML profile from a reader.
func Load(r io.Reader) (Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadFile parses a YAML profile from a file.
func LoadFile(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// buildNode converts a YAML mapping into a MapNode. Scalar values become
// properties, nested mappings become children, null values become empty
// children.
func buildNode(name string, m *yaml.Node) (*MapNode, error) {
	node := NewNode(name)
	seen := make(map[string]int)

	for i := 0; i+1 < len(m.Content); i += 2 {
		keyNode := m.Content[i]
		valNode := m.Content[i+1]
		key := keyNode.Value

		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("line %d: duplicate entry %q (first on line %d)",
				keyNode.Line, key, prev)
		}
		seen[key] = keyNode.Line

		switch valNode.Kind {
		case yaml.ScalarNode:
			if valNode.Tag == "!!null" {
				node.AddChild(NewNode(key))
			} else {
				node.SetProperty(key, valNode.Value)
			}

		case yaml.MappingNode:
			child, err := buildNode(key, valNode)
			if err != nil {
				return nil, err
			}
			node.AddChild(child)

		default:
			return nil, fmt.Errorf("line %d: entry %q: only mappings and scalars are allowed",
				valNode.Line, key)
		}
	}

	return node, nil
}
