package loader

import (
	"image"
	"io"
)

// loaderBackend defines the generic interface for decoding images from files or streams.
// Concrete implementations (e.g., imageLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode reads and decodes the image at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if reading or decoding fails
	Decode(path string) (image.Image, error)

	// DecodeReader decodes an image from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing encoded image data
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if decoding fails
	DecodeReader(r io.Reader) (image.Image, error)
}
