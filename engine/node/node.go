// Package node defines the editor's node variants, their typed input and output pins and the
// scene compiler that flattens a Scene node's upstream graph into a GPU-ready scene.
//
// Nodes are a closed tagged variant: Kind selects which payload pointer is set, and every
// operation switches exhaustively over Kind. Nodes reference each other only through
// graph.NodeID values resolved by the arena.
package node

import (
	"encoding/json"
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/subscription"
)

// Node is one vertex of the editor graph. Exactly one payload matching Kind is non-nil.
type Node struct {
	Kind Kind `json:"kind"`

	Number       *NumberNode          `json:"number,omitempty"`
	String       *StringNode          `json:"string,omitempty"`
	Color        *ColorNode           `json:"color,omitempty"`
	Vector       *VectorNode          `json:"vector,omitempty"`
	Texture      *TextureNode         `json:"texture,omitempty"`
	Lambertian   *LambertianNode      `json:"lambertian,omitempty"`
	Metal        *MetalNode           `json:"metal,omitempty"`
	Dielectric   *DielectricNode      `json:"dielectric,omitempty"`
	Checkerboard *CheckerboardNode    `json:"checkerboard,omitempty"`
	Emissive     *EmissiveNode        `json:"emissive,omitempty"`
	Sphere       *SphereNode          `json:"sphere,omitempty"`
	Collection   *CollectionNode      `json:"collection,omitempty"`
	Scene        *SceneNode           `json:"scene,omitempty"`
	Camera       *CameraNode          `json:"camera,omitempty"`
	Render       *RaytracerRenderNode `json:"render,omitempty"`
	Output       *OutputNode          `json:"output,omitempty"`
}

// New creates a node of the given kind with default pin values.
//
// Parameters:
//   - kind: the node variant
//
// Returns:
//   - *Node: the new node
func New(kind Kind) *Node {
	n := &Node{Kind: kind}
	switch kind {
	case KindNumber:
		n.Number = &NumberNode{}
	case KindString:
		n.String = &StringNode{}
	case KindColor:
		n.Color = &ColorNode{}
	case KindVector:
		n.Vector = &VectorNode{}
	case KindTexture:
		n.Texture = newTextureNode()
	case KindLambertian:
		n.Lambertian = newLambertianNode()
	case KindMetal:
		n.Metal = newMetalNode()
	case KindDielectric:
		n.Dielectric = newDielectricNode()
	case KindCheckerboard:
		n.Checkerboard = newCheckerboardNode()
	case KindEmissive:
		n.Emissive = newEmissiveNode()
	case KindSphere:
		n.Sphere = newSphereNode()
	case KindCollection:
		n.Collection = &CollectionNode{}
	case KindScene:
		n.Scene = newSceneNode()
	case KindCamera:
		n.Camera = newCameraNode()
	case KindRaytracerRender:
		n.Render = &RaytracerRenderNode{}
	case KindOutput:
		n.Output = &OutputNode{}
	}
	return n
}

// Title returns the display name of the node.
func (n *Node) Title() string {
	return n.Kind.String()
}

var (
	noFlags            = []TypeFlags{}
	textureInputs      = []TypeFlags{FlagTypicalNumberInput}
	lambertianInputs   = []TypeFlags{FlagTypicalVectorInput, FlagTexture}
	metalInputs        = []TypeFlags{FlagTypicalVectorInput, FlagTypicalNumberInput, FlagTexture}
	dielectricInputs   = []TypeFlags{FlagTypicalNumberInput}
	checkerboardInputs = []TypeFlags{FlagTypicalVectorInput, FlagTypicalVectorInput}
	emissiveInputs     = []TypeFlags{FlagTypicalVectorInput, FlagTexture}
	sphereInputs       = []TypeFlags{FlagTypicalVectorInput, FlagTypicalNumberInput, FlagMaterials}
	sceneInputs        = []TypeFlags{FlagPrimitives | FlagCollection}
	raytracerInputs    = []TypeFlags{FlagCamera}
	outputInputs       = []TypeFlags{FlagRenders}
	cameraInputs       = []TypeFlags{
		FlagTypicalVectorInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagScene,
	}
)

// Inputs returns the type flags accepted by each input pin, indexed by input.
func (n *Node) Inputs() []TypeFlags {
	switch n.Kind {
	case KindNumber, KindString, KindColor, KindVector:
		return noFlags
	case KindTexture:
		return textureInputs
	case KindLambertian:
		return lambertianInputs
	case KindMetal:
		return metalInputs
	case KindDielectric:
		return dielectricInputs
	case KindCheckerboard:
		return checkerboardInputs
	case KindEmissive:
		return emissiveInputs
	case KindSphere:
		return sphereInputs
	case KindCollection:
		inputs := make([]TypeFlags, len(n.Collection.Nodes)+1)
		for i := range inputs {
			inputs[i] = FlagAll
		}
		return inputs
	case KindScene:
		return sceneInputs
	case KindCamera:
		return cameraInputs
	case KindRaytracerRender:
		return raytracerInputs
	case KindOutput:
		return outputInputs
	default:
		return noFlags
	}
}

// Outputs returns the type flags produced by each output pin, indexed by output.
func (n *Node) Outputs() []TypeFlags {
	switch n.Kind {
	case KindNumber:
		return []TypeFlags{FlagNumber}
	case KindString:
		return []TypeFlags{FlagString}
	case KindColor:
		return []TypeFlags{FlagColor}
	case KindVector:
		return []TypeFlags{FlagVector}
	case KindTexture:
		return []TypeFlags{FlagTexture | FlagString}
	case KindLambertian:
		return []TypeFlags{FlagMaterialLambert}
	case KindMetal:
		return []TypeFlags{FlagMaterialMetal}
	case KindDielectric:
		return []TypeFlags{FlagMaterialDielectric}
	case KindCheckerboard:
		return []TypeFlags{FlagMaterialCheckerboard}
	case KindEmissive:
		return []TypeFlags{FlagMaterialEmissive}
	case KindSphere:
		return []TypeFlags{FlagPrimitiveSphere}
	case KindCollection:
		return []TypeFlags{FlagCollection}
	case KindScene:
		return []TypeFlags{FlagScene}
	case KindCamera:
		return []TypeFlags{FlagCamera}
	case KindRaytracerRender:
		return []TypeFlags{FlagRenderRaytracer}
	case KindOutput:
		return noFlags
	default:
		return noFlags
	}
}

// Subscriptions returns the node's OnChange registry, or nil for kinds that never publish.
func (n *Node) Subscriptions() *subscription.Registry[*Context] {
	switch n.Kind {
	case KindTexture:
		return &n.Texture.subs
	case KindLambertian:
		return &n.Lambertian.subs
	case KindMetal:
		return &n.Metal.subs
	case KindDielectric:
		return &n.Dielectric.subs
	case KindCheckerboard:
		return &n.Checkerboard.subs
	case KindEmissive:
		return &n.Emissive.subs
	case KindSphere:
		return &n.Sphere.subs
	case KindCollection:
		return &n.Collection.subs
	case KindNumber, KindString, KindColor, KindVector, KindScene,
		KindCamera, KindRaytracerRender, KindOutput:
		return nil
	default:
		return nil
	}
}

// IsRender reports whether the node produces a render the Output node can draw.
func (n *Node) IsRender() bool {
	return n.Kind == KindRaytracerRender
}

// validate checks that the payload for Kind is present, recursing into inline materials.
func (n *Node) validate() error {
	var ok bool
	switch n.Kind {
	case KindNumber:
		ok = n.Number != nil
	case KindString:
		ok = n.String != nil
	case KindColor:
		ok = n.Color != nil
	case KindVector:
		ok = n.Vector != nil
	case KindTexture:
		ok = n.Texture != nil
	case KindLambertian:
		ok = n.Lambertian != nil
	case KindMetal:
		ok = n.Metal != nil
	case KindDielectric:
		ok = n.Dielectric != nil
	case KindCheckerboard:
		ok = n.Checkerboard != nil
	case KindEmissive:
		ok = n.Emissive != nil
	case KindSphere:
		ok = n.Sphere != nil
		if ok && n.Sphere.Inline != nil {
			if !n.Sphere.Inline.Kind.IsMaterial() {
				return fmt.Errorf("%w: inline material of sphere is %s", ErrUnexpectedNode, n.Sphere.Inline.Kind)
			}
			if err := n.Sphere.Inline.validate(); err != nil {
				return err
			}
		}
	case KindCollection:
		ok = n.Collection != nil
	case KindScene:
		ok = n.Scene != nil
	case KindCamera:
		ok = n.Camera != nil
	case KindRaytracerRender:
		ok = n.Render != nil
	case KindOutput:
		ok = n.Output != nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(n.Kind))
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingPayload, n.Kind)
	}
	return nil
}

type rawNode Node

// UnmarshalJSON decodes a node and checks that the payload matches its kind. A decoded
// Scene node starts uncompiled.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node(raw)
	if err := n.validate(); err != nil {
		return err
	}
	if n.Kind == KindSphere && n.Sphere.Inline == nil {
		n.Sphere.Inline = New(KindLambertian)
	}
	if n.Kind == KindScene {
		n.Scene.reset()
	}
	return nil
}
