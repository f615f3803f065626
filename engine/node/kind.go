package node

import "fmt"

// Kind is the closed set of node variants.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindColor
	KindVector
	KindTexture
	KindLambertian
	KindMetal
	KindDielectric
	KindCheckerboard
	KindEmissive
	KindSphere
	KindCollection
	KindScene
	KindCamera
	KindRaytracerRender
	KindOutput

	kindCount
)

var kindNames = [kindCount]string{
	KindNumber:          "Number",
	KindString:          "String",
	KindColor:           "Color",
	KindVector:          "Vector",
	KindTexture:         "Texture",
	KindLambertian:      "Lambertian Material",
	KindMetal:           "Metal Material",
	KindDielectric:      "Dielectric Material",
	KindCheckerboard:    "Checkerboard Material",
	KindEmissive:        "Emissive Material",
	KindSphere:          "Sphere Primitive",
	KindCollection:      "Collection",
	KindScene:           "Scene",
	KindCamera:          "Camera",
	KindRaytracerRender: "Raytracer Render",
	KindOutput:          "Output",
}

// Kinds returns every node kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a display name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || k >= kindCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsMaterial reports whether k is one of the material kinds.
func (k Kind) IsMaterial() bool {
	switch k {
	case KindLambertian, KindMetal, KindDielectric, KindCheckerboard, KindEmissive:
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether k is a primitive kind.
func (k Kind) IsPrimitive() bool {
	return k == KindSphere
}
