package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlLoaderBackendImpl is the implementation of yamlLoaderBackend.
type yamlLoaderBackendImpl struct{}

// yamlLoaderBackend is a loaderBackend implementation for YAML blend set documents.
// Unknown fields are rejected so typos in documents surface as errors.
type yamlLoaderBackend interface {
	loaderBackend
}

var _ yamlLoaderBackend = &yamlLoaderBackendImpl{}

// newYAMLLoaderBackend creates a new YAML loader backend.
//
// Returns:
//   - yamlLoaderBackend: the loader backend for .yaml/.yml files
func newYAMLLoaderBackend() yamlLoaderBackend {
	return &yamlLoaderBackendImpl{}
}

func (b *yamlLoaderBackendImpl) Load(path string) (*BlendSetDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return b.LoadReader(f)
}

func (b *yamlLoaderBackendImpl) LoadReader(r io.Reader) (*BlendSetDocument, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc BlendSetDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document: %w", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return &doc, nil
}
