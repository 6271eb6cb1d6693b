package config

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// ValidationError lists every problem found in a configuration source
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration in %s:\n  - %s", e.Source, strings.Join(e.Problems, "\n  - "))
}

// Schema returns the embedded configuration schema document.
func Schema() []byte {
	return configSchemaJSON
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(configSchemaJSON))
	})
	return schema, schemaErr
}

// ValidateConfig validates configuration data against the embedded schema.
// Sources ending in .toml are parsed as TOML, everything else as YAML (which
// includes JSON). An empty document is valid.
func ValidateConfig(configData []byte, source string) error {
	doc, err := decodeDocument(configData, source)
	if err != nil {
		return &ValidationError{Source: source, Problems: []string{fmt.Sprintf("failed to parse: %v", err)}}
	}
	if doc == nil {
		return nil
	}

	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationError{Source: source, Problems: []string{err.Error()}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return &ValidationError{Source: source, Problems: problems}
	}
	return nil
}

func decodeDocument(data []byte, source string) (interface{}, error) {
	if strings.EqualFold(filepath.Ext(source), ".toml") {
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		if len(m) == 0 {
			return nil, nil
		}
		return m, nil
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
