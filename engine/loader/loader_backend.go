package loader

import (
	"io"
)

// loaderBackend defines the generic interface for decoding blend set documents from files or streams.
// Concrete implementations (e.g., yamlLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes the document at the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *BlendSetDocument: the decoded document
	//   - error: error if reading or decoding fails
	Load(path string) (*BlendSetDocument, error)

	// LoadReader decodes a document from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing document data
	//
	// Returns:
	//   - *BlendSetDocument: the decoded document
	//   - error: error if decoding fails
	LoadReader(r io.Reader) (*BlendSetDocument, error)
}
