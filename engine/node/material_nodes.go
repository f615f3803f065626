package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/subscription"
)

// LambertianNode is a diffuse material. A wired texture replaces the albedo colour.
type LambertianNode struct {
	Albedo  common.Pin[common.Color]  `json:"albedo"`
	Texture common.Pin[*graph.NodeID] `json:"texture"`

	subs subscription.Registry[*Context]
}

// MetalNode is a reflective material with optional fuzzy reflections.
type MetalNode struct {
	Albedo  common.Pin[common.Color]  `json:"albedo"`
	Fuzz    common.Pin[float32]       `json:"fuzz"`
	Texture common.Pin[*graph.NodeID] `json:"texture"`

	subs subscription.Registry[*Context]
}

// DielectricNode is a refractive material.
type DielectricNode struct {
	RefractionIndex common.Pin[float32] `json:"refraction_index"`

	subs subscription.Registry[*Context]
}

// CheckerboardNode alternates two colours in a 3D checker pattern.
type CheckerboardNode struct {
	Even common.Pin[common.Color] `json:"even"`
	Odd  common.Pin[common.Color] `json:"odd"`

	subs subscription.Registry[*Context]
}

// EmissiveNode is a light-emitting material. Emit may exceed 1.
type EmissiveNode struct {
	Emit    common.Pin[common.Color]  `json:"emit"`
	Texture common.Pin[*graph.NodeID] `json:"texture"`

	subs subscription.Registry[*Context]
}

func newLambertianNode() *LambertianNode {
	return &LambertianNode{Albedo: common.NewPin(common.ColorLightGray)}
}

func newMetalNode() *MetalNode {
	return &MetalNode{Albedo: common.NewPin(common.ColorLightGray)}
}

func newDielectricNode() *DielectricNode {
	return &DielectricNode{RefractionIndex: common.NewPin[float32](1.5)}
}

func newCheckerboardNode() *CheckerboardNode {
	return &CheckerboardNode{
		Even: common.NewPin(common.ColorBlack),
		Odd:  common.NewPin(common.ColorWhite),
	}
}

func newEmissiveNode() *EmissiveNode {
	return &EmissiveNode{Emit: common.NewPin(common.ColorWhite)}
}

// TextureRef returns the wired texture node of a material, if any.
func (n *Node) TextureRef() *graph.NodeID {
	switch n.Kind {
	case KindLambertian:
		return n.Lambertian.Texture.Get()
	case KindMetal:
		return n.Metal.Texture.Get()
	case KindEmissive:
		return n.Emissive.Texture.Get()
	default:
		return nil
	}
}
