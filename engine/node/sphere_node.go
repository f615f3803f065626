package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/subscription"
	"github.com/go-gl/mathgl/mgl32"
)

// SphereNode is a sphere primitive. Without a wired material it uses Inline, a material node
// owned by the sphere that is compiled separately for every sphere.
type SphereNode struct {
	Center   common.Pin[mgl32.Vec3]    `json:"center"`
	Radius   common.Pin[float32]       `json:"radius"`
	Material common.Pin[*graph.NodeID] `json:"material"`
	Inline   *Node                     `json:"inline"`

	subs subscription.Registry[*Context]
}

func newSphereNode() *SphereNode {
	return &SphereNode{
		Radius: common.NewPin[float32](1),
		Inline: New(KindLambertian),
	}
}
