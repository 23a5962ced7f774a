package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveInstanceID writes instance.id into the YAML file at path, keeping the
// rest of the document (comments included) as it is. The file is created if
// it does not exist.
func SaveInstanceID(path, id string) error {
	var doc yaml.Node

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config file %s is not a YAML mapping", path)
	}

	instance := mappingValue(doc.Content[0], "instance")
	if instance.Kind != yaml.MappingNode {
		instance.Kind = yaml.MappingNode
		instance.Tag = ""
		instance.Value = ""
		instance.Content = nil
	}
	idNode := mappingValue(instance, "id")
	idNode.Kind = yaml.ScalarNode
	idNode.Tag = "!!str"
	idNode.Style = yaml.DoubleQuotedStyle
	idNode.Value = id

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// mappingValue returns the value node stored under key, appending an empty
// one when the key is absent.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, k, v)
	return v
}
