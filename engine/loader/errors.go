package loader

import "errors"

var ErrUnsupportedFormat = errors.New("unsupported texture format")
