package schemafile

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Document is the top level of a schema file.
type Document struct {
	Platform string   `yaml:"platform,omitempty"`
	Structs  []Struct `yaml:"structs"`
}

// Struct declares one schema.
type Struct struct {
	Name   string  `yaml:"name"`
	Align  int     `yaml:"align,omitempty"`
	Fields []Field `yaml:"fields"`
}

// Field declares one field. Count is kept as text so that literals and
// sibling references share a key.
type Field struct {
	Name     string    `yaml:"name"`
	Kind     string    `yaml:"kind"`
	Target   string    `yaml:"target,omitempty"`
	Elem     string    `yaml:"elem,omitempty"`
	Encoding string    `yaml:"encoding,omitempty"`
	Count    CountText `yaml:"count,omitempty"`
}

// CountText accepts either an integer or a field name.
type CountText string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CountText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("count must be an integer or a field name, got %v", node.Tag)
	}
	switch node.Tag {
	case "!!int":
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return fmt.Errorf("count %q: %w", node.Value, err)
		}
		if n < 0 {
			return fmt.Errorf("count %d is negative", n)
		}
		*c = CountText(strconv.FormatInt(n, 10))
	default:
		*c = CountText(node.Value)
	}
	return nil
}

// MarshalYAML writes literal counts as integers.
func (c CountText) MarshalYAML() (any, error) {
	if n, err := strconv.Atoi(string(c)); err == nil {
		return n, nil
	}
	return string(c), nil
}
