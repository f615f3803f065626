package node

import "math"

// TypeFlags is a bitmask of value categories. An output may be wired into an input only when
// their flags intersect.
type TypeFlags uint64

const (
	FlagMaterialMetal TypeFlags = 1 << iota
	FlagMaterialDielectric
	FlagMaterialLambert
	FlagMaterialEmissive
	FlagMaterialCheckerboard
	FlagTexture
	FlagPrimitiveSphere
	FlagCollection
	FlagCamera
	FlagScene
	FlagRenderTriangle
	FlagRenderRaytracer
	FlagOutput
	FlagNumber
	FlagString
	FlagColor
	FlagVector
	// FlagExpression is kept so saved graphs using it still decode; no node produces it.
	FlagExpression
)

const (
	FlagMaterials = FlagMaterialMetal | FlagMaterialDielectric | FlagMaterialLambert |
		FlagMaterialEmissive | FlagMaterialCheckerboard
	FlagPrimitives         = FlagPrimitiveSphere
	FlagRenders            = FlagRenderTriangle | FlagRenderRaytracer
	FlagTypicalVectorInput = FlagVector | FlagColor | FlagNumber | FlagExpression
	FlagTypicalNumberInput = FlagNumber | FlagExpression

	FlagAll TypeFlags = math.MaxUint64
)

// Intersects reports whether f and other share any category.
func (f TypeFlags) Intersects(other TypeFlags) bool {
	return f&other != 0
}
