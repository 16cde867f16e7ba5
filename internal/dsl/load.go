package dsl

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v4"

	"github.com/shllg/mcp-agents/internal/render"
)

// Load parses YAML bytes into File and validates it. Unknown keys are errors.
func Load(data []byte) (*File, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// LoadFile renders path against the environment, then parses it.
func LoadFile(path string) (*File, error) {
	data, err := render.File(path)
	if err != nil {
		return nil, err
	}
	file, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}
