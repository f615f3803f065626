package scene

import "errors"

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrTextureSize     = errors.New("texture pixel count does not match its size")
)
