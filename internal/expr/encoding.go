package expr

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalText encodes e as its formula text. It also drives JSON encoding.
func (e Expr) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses formula text into e.
func (e *Expr) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalYAML encodes e as a plain YAML string.
func (e Expr) MarshalYAML() (any, error) {
	return e.String(), nil
}

// UnmarshalYAML accepts a scalar: formula text, or a bare number.
func (e *Expr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: formula must be a scalar", value.Line)
	}
	parsed, err := Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = parsed
	return nil
}
