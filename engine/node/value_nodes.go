package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// NumberNode is a constant scalar.
type NumberNode struct {
	Value float32 `json:"value"`
}

// StringNode is a constant string.
type StringNode struct {
	Value string `json:"value"`
}

// ColorNode is a constant RGB colour.
type ColorNode struct {
	Value common.Color `json:"value"`
}

// VectorNode is a constant 3-vector.
type VectorNode struct {
	Value mgl32.Vec3 `json:"value"`
}

// numberValue returns the scalar a node feeds into a TypicalNumber input.
func (n *Node) numberValue() (float32, bool) {
	if n.Kind == KindNumber && n.Number != nil {
		return n.Number.Value, true
	}
	return 0, false
}

// vectorValue returns the 3-vector a node feeds into a TypicalVector input.
// Numbers are splatted across all components and colours pass through unchanged.
func (n *Node) vectorValue() (mgl32.Vec3, bool) {
	switch {
	case n.Kind == KindVector && n.Vector != nil:
		return n.Vector.Value, true
	case n.Kind == KindColor && n.Color != nil:
		return mgl32.Vec3(n.Color.Value), true
	case n.Kind == KindNumber && n.Number != nil:
		v := n.Number.Value
		return mgl32.Vec3{v, v, v}, true
	}
	return mgl32.Vec3{}, false
}
