package loader

import (
	"image"
	"io"

	"github.com/anthonynsimon/bild/imgio"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageLoaderBackend decodes PNG and JPEG through bild's imgio, plus BMP, TIFF and WebP
// through the x/image decoders registered with the image package.
type imageLoaderBackend struct{}

var _ loaderBackend = &imageLoaderBackend{}

func newImageLoaderBackend() *imageLoaderBackend {
	return &imageLoaderBackend{}
}

func (b *imageLoaderBackend) Decode(path string) (image.Image, error) {
	return imgio.Open(path)
}

func (b *imageLoaderBackend) DecodeReader(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}
