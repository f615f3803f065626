// Package scene holds the flat, GPU-ready scene produced by compiling a node graph:
// spheres referencing materials by index, materials referencing textures by index, and the
// decoded texture pixels.
package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/noded-go/common"
)

// Sphere is a compiled sphere primitive.
type Sphere struct {
	Center      [3]float32
	Radius      float32
	MaterialIdx uint32
}

// MaterialKind tags the active variant of a Material.
type MaterialKind uint32

const (
	MaterialLambertian MaterialKind = iota
	MaterialMetal
	MaterialDielectric
	MaterialCheckerboard
	MaterialEmissive
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialLambertian:
		return "Lambertian"
	case MaterialMetal:
		return "Metal"
	case MaterialDielectric:
		return "Dielectric"
	case MaterialCheckerboard:
		return "Checkerboard"
	case MaterialEmissive:
		return "Emissive"
	default:
		return fmt.Sprintf("MaterialKind(%d)", uint32(k))
	}
}

// Material is a compiled material. Only the fields of the active Kind are meaningful;
// texture fields are indices into Scene.Textures.
type Material struct {
	Kind MaterialKind

	Albedo          uint32  // Lambertian, Metal
	Fuzz            float32 // Metal
	RefractionIndex float32 // Dielectric
	Even            uint32  // Checkerboard
	Odd             uint32  // Checkerboard
	Emit            uint32  // Emissive
}

func Lambertian(albedo uint32) Material {
	return Material{Kind: MaterialLambertian, Albedo: albedo}
}

func Metal(albedo uint32, fuzz float32) Material {
	return Material{Kind: MaterialMetal, Albedo: albedo, Fuzz: fuzz}
}

func Dielectric(refractionIndex float32) Material {
	return Material{Kind: MaterialDielectric, RefractionIndex: refractionIndex}
}

func Checkerboard(even, odd uint32) Material {
	return Material{Kind: MaterialCheckerboard, Even: even, Odd: odd}
}

func Emissive(emit uint32) Material {
	return Material{Kind: MaterialEmissive, Emit: emit}
}

// TextureIndices returns the texture indices referenced by the active variant.
func (m Material) TextureIndices() []uint32 {
	switch m.Kind {
	case MaterialLambertian, MaterialMetal:
		return []uint32{m.Albedo}
	case MaterialCheckerboard:
		return []uint32{m.Even, m.Odd}
	case MaterialEmissive:
		return []uint32{m.Emit}
	default:
		return nil
	}
}

// TextureData is a decoded RGB texture. Key is the content key (the source path) of loaded
// textures and nil for generated ones. Key, Scale and Revision together identify the source
// for reuse across recompiles.
type TextureData struct {
	Pixels   [][3]float32
	Width    uint32
	Height   uint32
	Key      *string
	Scale    float32
	Revision uint64
}

// SolidTexture returns a generated 1x1 texture of the given color.
func SolidTexture(c common.Color) TextureData {
	return TextureData{
		Pixels: [][3]float32{c},
		Width:  1,
		Height: 1,
		Scale:  1,
	}
}

// Matches reports whether t was produced from the given key, scale and revision.
func (t *TextureData) Matches(key string, scale float32, revision uint64) bool {
	return t.Key != nil && *t.Key == key && t.Scale == scale && t.Revision == revision
}

// Scene is the compiled scene.
type Scene struct {
	Spheres   []Sphere
	Materials []Material
	Textures  []TextureData
}

// Take moves the contents out of s, leaving it empty.
func (s *Scene) Take() Scene {
	old := *s
	*s = Scene{}
	return old
}

// Lights returns the indices of spheres whose material is emissive.
func (s *Scene) Lights() []uint32 {
	var lights []uint32
	for i, sp := range s.Spheres {
		if int(sp.MaterialIdx) < len(s.Materials) && s.Materials[sp.MaterialIdx].Kind == MaterialEmissive {
			lights = append(lights, uint32(i))
		}
	}
	return lights
}

// Validate checks that every index refers to an existing element.
func (s *Scene) Validate() error {
	for i, sp := range s.Spheres {
		if int(sp.MaterialIdx) >= len(s.Materials) {
			return fmt.Errorf("sphere %d: %w: material %d of %d", i, ErrIndexOutOfRange, sp.MaterialIdx, len(s.Materials))
		}
	}
	for i, m := range s.Materials {
		for _, tex := range m.TextureIndices() {
			if int(tex) >= len(s.Textures) {
				return fmt.Errorf("material %d: %w: texture %d of %d", i, ErrIndexOutOfRange, tex, len(s.Textures))
			}
		}
	}
	for i, t := range s.Textures {
		if uint64(t.Width)*uint64(t.Height) != uint64(len(t.Pixels)) {
			return fmt.Errorf("texture %d: %w: %dx%d with %d pixels", i, ErrTextureSize, t.Width, t.Height, len(t.Pixels))
		}
	}
	return nil
}

// Stats is a human-readable summary used by the CLI.
func (s *Scene) Stats() string {
	pixels := 0
	for _, t := range s.Textures {
		pixels += len(t.Pixels)
	}
	return fmt.Sprintf("spheres: %d, materials: %d, textures: %d (%d texels), lights: %d",
		len(s.Spheres), len(s.Materials), len(s.Textures), pixels, len(s.Lights()))
}
