package raytracer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// kernelSource is the path tracing kernel. It includes the scene struct definitions through
// the shader pre-processor.
//
//go:embed assets/raytracer.wgsl
var kernelSource string

// GPUCamera is the thin-lens camera uniform.
// Size: 96 bytes (WGSL uniform layout, vec3 fields aligned to 16).
type GPUCamera struct {
	Eye             [3]float32 // offset  0
	_pad0           float32    // offset 12
	Horizontal      [3]float32 // offset 16
	_pad1           float32    // offset 28
	Vertical        [3]float32 // offset 32
	_pad2           float32    // offset 44
	U               [3]float32 // offset 48
	_pad3           float32    // offset 60
	V               [3]float32 // offset 64
	LensRadius      float32    // offset 76
	LowerLeftCorner [3]float32 // offset 80
	_pad4           float32    // offset 92
}

// NewGPUCamera derives the lens basis and image plane from the camera and viewport.
//
// Parameters:
//   - c: the camera
//   - viewport: width and height in pixels; must be non-zero
//
// Returns:
//   - GPUCamera: the camera uniform
func NewGPUCamera(c Camera, viewport [2]uint32) GPUCamera {
	aspect := float32(viewport[0]) / float32(viewport[1])
	theta := common.Radians(c.Vfov)
	halfHeight := c.FocusDistance * math32.Tan(0.5*theta)
	halfWidth := aspect * halfHeight

	w := c.EyeDir.Normalize()
	v := c.Up.Normalize()
	u := w.Cross(v)

	llc := c.EyePos.Add(w.Mul(c.FocusDistance)).Sub(u.Mul(halfWidth)).Sub(v.Mul(halfHeight))

	return GPUCamera{
		Eye:             c.EyePos,
		Horizontal:      u.Mul(2 * halfWidth),
		Vertical:        v.Mul(2 * halfHeight),
		U:               u,
		V:               v,
		LensRadius:      0.5 * c.Aperture,
		LowerLeftCorner: llc,
	}
}

// Size returns the size of the GPUCamera struct in bytes.
func (g *GPUCamera) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the camera for GPU upload.
//
// Returns:
//   - []byte: the 96-byte buffer
func (g *GPUCamera) Marshal() []byte {
	buf := make([]byte, g.Size())
	putVec3(buf[0:], g.Eye)
	putVec3(buf[16:], g.Horizontal)
	putVec3(buf[32:], g.Vertical)
	putVec3(buf[48:], g.U)
	putVec3(buf[64:], g.V)
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.LensRadius))
	putVec3(buf[80:], g.LowerLeftCorner)
	return buf
}

// GPUSamplingParams is the per-frame sampling uniform.
// Size: 16 bytes.
type GPUSamplingParams struct {
	NumSamplesPerPixel         uint32 // offset  0
	NumBounces                 uint32 // offset  4
	AccumulatedSamplesPerPixel uint32 // offset  8
	ClearAccumulatedSamples    uint32 // offset 12
}

// Size returns the size of the GPUSamplingParams struct in bytes.
func (g *GPUSamplingParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the sampling params for GPU upload.
func (g *GPUSamplingParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.NumSamplesPerPixel)
	binary.LittleEndian.PutUint32(buf[4:], g.NumBounces)
	binary.LittleEndian.PutUint32(buf[8:], g.AccumulatedSamplesPerPixel)
	binary.LittleEndian.PutUint32(buf[12:], g.ClearAccumulatedSamples)
	return buf
}

// GPUFrameData carries the viewport and frame counter used to seed the per-pixel RNG.
// Size: 16 bytes.
type GPUFrameData struct {
	Width       uint32 // offset  0
	Height      uint32 // offset  4
	FrameNumber uint32 // offset  8
	_pad        uint32 // offset 12
}

// Size returns the size of the GPUFrameData struct in bytes.
func (g *GPUFrameData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the frame data for GPU upload.
func (g *GPUFrameData) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.Width)
	binary.LittleEndian.PutUint32(buf[4:], g.Height)
	binary.LittleEndian.PutUint32(buf[8:], g.FrameNumber)
	return buf
}

// GPUVertexUniforms positions the full-screen quad.
// Size: 128 bytes (two column-major mat4x4<f32>).
type GPUVertexUniforms struct {
	ViewProjection mgl32.Mat4
	Model          mgl32.Mat4
}

// quadVertexUniforms maps the unit quad centred on the origin onto clip space.
func quadVertexUniforms() GPUVertexUniforms {
	return GPUVertexUniforms{
		ViewProjection: orthoLHZO(-0.5, 0.5, -0.5, 0.5, -1, 1),
		Model:          mgl32.Ident4(),
	}
}

// Size returns the size of the GPUVertexUniforms struct in bytes.
func (g *GPUVertexUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniforms for GPU upload.
func (g *GPUVertexUniforms) Marshal() []byte {
	buf := make([]byte, 0, g.Size())
	buf = append(buf, common.Mat4ToBytes(g.ViewProjection)...)
	buf = append(buf, common.Mat4ToBytes(g.Model)...)
	return buf
}

// orthoLHZO is a left-handed orthographic projection with depth mapped to [0, 1].
// mgl32.Ortho targets the OpenGL [-1, 1] depth range, which WebGPU clips.
func orthoLHZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	m := mgl32.Ident4()
	m.Set(0, 0, 2/(right-left))
	m.Set(0, 3, -(right+left)/(right-left))
	m.Set(1, 1, 2/(top-bottom))
	m.Set(1, 3, -(top+bottom)/(top-bottom))
	m.Set(2, 2, 1/(far-near))
	m.Set(2, 3, -near/(far-near))
	return m
}

// Vertex is one corner of the full-screen quad.
// Size: 16 bytes (position vec2, uv vec2).
type Vertex struct {
	Position [2]float32
	UV       [2]float32
}

// quadVertices is the two-triangle quad, counter-clockwise, uv origin top-left.
var quadVertices = []Vertex{
	{Position: [2]float32{-0.5, 0.5}, UV: [2]float32{0, 0}},
	{Position: [2]float32{-0.5, -0.5}, UV: [2]float32{0, 1}},
	{Position: [2]float32{0.5, -0.5}, UV: [2]float32{1, 1}},
	{Position: [2]float32{-0.5, 0.5}, UV: [2]float32{0, 0}},
	{Position: [2]float32{0.5, -0.5}, UV: [2]float32{1, 1}},
	{Position: [2]float32{0.5, 0.5}, UV: [2]float32{1, 0}},
}

// vertexSize is the byte stride of Vertex.
const vertexSize = 16

func marshalVertices(vs []Vertex) []byte {
	buf := make([]byte, len(vs)*vertexSize)
	for i, v := range vs {
		o := i * vertexSize
		binary.LittleEndian.PutUint32(buf[o:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(buf[o+4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(buf[o+8:], math.Float32bits(v.UV[0]))
		binary.LittleEndian.PutUint32(buf[o+12:], math.Float32bits(v.UV[1]))
	}
	return buf
}

// pixelSize is the byte size of one accumulated pixel (three f32).
const pixelSize = 12

func putVec3(buf []byte, v [3]float32) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}
