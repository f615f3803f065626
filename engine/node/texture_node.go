package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/subscription"
)

// TextureNode references an image file. Scale multiplies every texel.
// Revision is bumped when the file changes on disk and is not persisted.
type TextureNode struct {
	Path     string              `json:"path"`
	Scale    common.Pin[float32] `json:"scale"`
	Revision uint64              `json:"-"`

	subs subscription.Registry[*Context]
}

func newTextureNode() *TextureNode {
	return &TextureNode{Scale: common.NewPin[float32](1)}
}
