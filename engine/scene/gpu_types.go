package scene

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
)

// GPUSceneTypesSource is the canonical WGSL definition of the Sphere, Material and
// TextureDescriptor structs. Shaders that read the scene buffers prepend it to their source.
//
//go:embed assets/scene_types.wgsl
var GPUSceneTypesSource string

// EmptyTextureOffset marks a material slot that references no texture.
const EmptyTextureOffset uint32 = 0xFFFFFFFF

// NoLight pads an empty light buffer. Shaders skip it.
const NoLight uint32 = 0xFFFFFFFF

// GPUSphere is the GPU-aligned representation of a sphere.
// Size: 32 bytes.
type GPUSphere struct {
	Center      [4]float32 // offset  0: xyz center, w unused
	Radius      float32    // offset 16
	MaterialIdx uint32     // offset 20
	_pad        [2]uint32  // offset 24
}

// Size returns the size of the GPUSphere struct in bytes.
func (g *GPUSphere) Size() int {
	return 32
}

// Marshal serializes the sphere for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer
func (g *GPUSphere) Marshal() []byte {
	buf := make([]byte, 32)
	for i, c := range g.Center {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(c))
	}
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Radius))
	binary.LittleEndian.PutUint32(buf[20:24], g.MaterialIdx)
	return buf
}

// GPUMaterial is the GPU-aligned representation of a material.
// Id encodes the variant (0 Lambertian, 1 Metal, 2 Dielectric, 3 Checkerboard, 4 Emissive),
// Desc1 and Desc2 are texture descriptor indices and X holds fuzz or refraction index.
// Size: 32 bytes.
type GPUMaterial struct {
	ID    uint32    // offset  0
	Desc1 uint32    // offset  4
	Desc2 uint32    // offset  8
	X     float32   // offset 12
	_pad  [4]uint32 // offset 16
}

// Size returns the size of the GPUMaterial struct in bytes.
func (g *GPUMaterial) Size() int {
	return 32
}

// Marshal serializes the material for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], g.ID)
	binary.LittleEndian.PutUint32(buf[4:8], g.Desc1)
	binary.LittleEndian.PutUint32(buf[8:12], g.Desc2)
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.X))
	return buf
}

// GPUTextureDescriptor locates one texture inside the flattened texel buffer.
// Offset is counted in texels. Size: 12 bytes.
type GPUTextureDescriptor struct {
	Width  uint32
	Height uint32
	Offset uint32
}

// EmptyTextureDescriptor is used for unused material slots.
var EmptyTextureDescriptor = GPUTextureDescriptor{Width: 0, Height: 0, Offset: EmptyTextureOffset}

// Size returns the size of the descriptor in bytes.
func (g *GPUTextureDescriptor) Size() int {
	return 12
}

// Marshal serializes the descriptor for GPU upload.
func (g *GPUTextureDescriptor) Marshal() []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], g.Width)
	binary.LittleEndian.PutUint32(buf[4:8], g.Height)
	binary.LittleEndian.PutUint32(buf[8:12], g.Offset)
	return buf
}

// ToGPU converts the sphere to its GPU layout.
func (s Sphere) ToGPU() GPUSphere {
	return GPUSphere{
		Center:      [4]float32{s.Center[0], s.Center[1], s.Center[2], 0},
		Radius:      s.Radius,
		MaterialIdx: s.MaterialIdx,
	}
}

// ToGPU converts the material to its GPU layout. Texture indices become descriptor indices;
// unused slots hold EmptyTextureOffset.
func (m Material) ToGPU() GPUMaterial {
	g := GPUMaterial{ID: uint32(m.Kind), Desc1: EmptyTextureOffset, Desc2: EmptyTextureOffset}
	switch m.Kind {
	case MaterialLambertian:
		g.Desc1 = m.Albedo
	case MaterialMetal:
		g.Desc1 = m.Albedo
		g.X = m.Fuzz
	case MaterialDielectric:
		g.X = m.RefractionIndex
	case MaterialCheckerboard:
		g.Desc1 = m.Even
		g.Desc2 = m.Odd
	case MaterialEmissive:
		g.Desc1 = m.Emit
	}
	return g
}

// GPUBuffers holds the flattened byte contents of every scene storage buffer.
// Empty arrays are padded with one inert element since zero-sized bindings are invalid.
type GPUBuffers struct {
	Spheres            []byte
	Materials          []byte
	TextureDescriptors []byte
	Texels             []byte
	Lights             []byte

	SphereCount  int
	LightCount   int
	TexelCount   int
	TextureCount int
}

// Flatten validates the scene and converts it into GPU buffer contents.
//
// Returns:
//   - GPUBuffers: the buffer contents
//   - error: an error if any index is out of range
func (s *Scene) Flatten() (GPUBuffers, error) {
	if err := s.Validate(); err != nil {
		return GPUBuffers{}, fmt.Errorf("failed to flatten scene: %w", err)
	}

	var out GPUBuffers
	out.SphereCount = len(s.Spheres)
	out.TextureCount = len(s.Textures)

	for _, sp := range s.Spheres {
		g := sp.ToGPU()
		out.Spheres = append(out.Spheres, g.Marshal()...)
	}
	if len(out.Spheres) == 0 {
		pad := GPUSphere{}
		out.Spheres = pad.Marshal()
	}

	for _, m := range s.Materials {
		g := m.ToGPU()
		out.Materials = append(out.Materials, g.Marshal()...)
	}
	if len(out.Materials) == 0 {
		pad := Lambertian(EmptyTextureOffset).ToGPU()
		out.Materials = pad.Marshal()
	}

	offset := uint32(0)
	for _, t := range s.Textures {
		desc := GPUTextureDescriptor{Width: t.Width, Height: t.Height, Offset: offset}
		out.TextureDescriptors = append(out.TextureDescriptors, desc.Marshal()...)
		for _, px := range t.Pixels {
			out.Texels = appendTexel(out.Texels, px)
		}
		offset += uint32(len(t.Pixels))
	}
	out.TexelCount = int(offset)
	if len(out.TextureDescriptors) == 0 {
		out.TextureDescriptors = EmptyTextureDescriptor.Marshal()
	}
	if len(out.Texels) == 0 {
		out.Texels = appendTexel(nil, [3]float32{})
	}

	lights := s.Lights()
	out.LightCount = len(lights)
	for _, l := range lights {
		out.Lights = binary.LittleEndian.AppendUint32(out.Lights, l)
	}
	if len(out.Lights) == 0 {
		out.Lights = binary.LittleEndian.AppendUint32(nil, NoLight)
	}
	return out, nil
}

func appendTexel(buf []byte, px [3]float32) []byte {
	for _, c := range px {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
	}
	return buf
}
