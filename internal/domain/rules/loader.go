package rules

import (
	"bytes"
	"fmt"
	"os"

	"chatledger/internal/domain/errors/domain"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML rules document. Unknown keys are rejected.
func Parse(data []byte) (Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: failed to parse rules document: %w", domain.ErrConfiguration, err)
	}
	return doc, nil
}

// LoadFile reads and compiles the rules document at path.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read rules file %s: %w", domain.ErrConfiguration, path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// Load returns the rule set from path, or the built-in rules when path is empty.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Marshal encodes the document as YAML.
func (d Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode rules document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode rules document: %w", err)
	}
	return buf.Bytes(), nil
}
