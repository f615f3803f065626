package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTypes = `struct Sphere {
    center: vec4<f32>,
    radius: f32,
    material_idx: u32,
    _pad0: u32,
    _pad1: u32,
};`

const testSource = `//@noded:include types

struct Uniforms {
    view_proj: mat4x4<f32>,
    model: mat4x4<f32>,
};

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(1) @binding(0) var<storage, read> spheres: array<Sphere>;
@group(1) @binding(1) var<storage, read_write> image: array<f32>;
@group(2) @binding(0) var<uniform> weights: array<vec4<f32>, 3>;

@vertex
fn vsMain(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = uniforms.view_proj * vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.uv;
    return out;
}

// @vertex fn commentedOut() {}

@fragment
fn fsMain(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.uv, spheres[0].radius, image[0]);
}
`

func newTestShader(t *testing.T, shaderType ShaderType, options ...ShaderBuilderOption) Shader {
	t.Helper()
	pp := NewPreProcessor(map[string]string{"types": testTypes})
	s, err := NewShader("test", shaderType, testSource, append([]ShaderBuilderOption{WithPreProcessor(pp)}, options...)...)
	require.NoError(t, err)
	return s
}

func TestEntryPoints(t *testing.T) {
	assert.Equal(t, "vsMain", newTestShader(t, ShaderTypeVertex).EntryPoint())
	assert.Equal(t, "fsMain", newTestShader(t, ShaderTypeFragment).EntryPoint())
}

func TestIncludeIsExpanded(t *testing.T) {
	s := newTestShader(t, ShaderTypeVertex)
	assert.Contains(t, s.Source(), "struct Sphere")
	assert.NotContains(t, s.Source(), "@noded:include")
}

func TestBindGroupLayoutSizes(t *testing.T) {
	s := newTestShader(t, ShaderTypeFragment)

	g0 := s.BindGroupLayoutDescriptor(0)
	require.Len(t, g0.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, g0.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(128), g0.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, g0.Entries[0].Visibility)

	g1 := s.BindGroupLayoutDescriptor(1)
	require.Len(t, g1.Entries, 2)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, g1.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(32), g1.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, g1.Entries[1].Buffer.Type)
	assert.Equal(t, uint64(4), g1.Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, "image", s.BindGroupVarName(1, 1))

	g2 := s.BindGroupLayoutDescriptor(2)
	require.Len(t, g2.Entries, 1)
	assert.Equal(t, uint64(48), g2.Entries[0].Buffer.MinBindingSize)
}

func TestWithGroupsFiltersLayouts(t *testing.T) {
	vs := newTestShader(t, ShaderTypeVertex, WithGroups(0))
	fs := newTestShader(t, ShaderTypeFragment, WithGroups(1, 2))

	assert.Len(t, vs.BindGroupLayoutDescriptors(), 1)
	assert.Len(t, fs.BindGroupLayoutDescriptors(), 2)

	merged := MergeBindGroupLayouts(vs, fs)
	require.Len(t, merged, 3)
	assert.Equal(t, wgpu.ShaderStageVertex, merged[0].Entries[0].Visibility)
	assert.Equal(t, wgpu.ShaderStageFragment, merged[1].Entries[1].Visibility)
}

func TestMergeORsVisibility(t *testing.T) {
	merged := MergeBindGroupLayouts(newTestShader(t, ShaderTypeVertex), newTestShader(t, ShaderTypeFragment))
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	assert.Len(t, merged[1].Entries, 2)
}

func TestVertexLayoutParsing(t *testing.T) {
	s := newTestShader(t, ShaderTypeVertex)
	layout := s.VertexLayout(0)
	require.Len(t, layout, 1)
	assert.Equal(t, uint64(16), layout[0].ArrayStride)
	require.Len(t, layout[0].Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout[0].Attributes[1].Format)
	assert.Equal(t, uint64(8), layout[0].Attributes[1].Offset)
	assert.Equal(t, uint32(1), layout[0].Attributes[1].ShaderLocation)

	assert.Nil(t, newTestShader(t, ShaderTypeFragment).VertexLayout(0))
}

func TestPreProcessorErrors(t *testing.T) {
	pp := NewPreProcessor(nil)
	_, err := pp.Process("//@noded:include missing")
	assert.ErrorContains(t, err, "unknown include")

	_, err = pp.Process("//@noded:include")
	assert.ErrorContains(t, err, "exactly one argument")
}

func TestPreProcessorExpandsOnce(t *testing.T) {
	pp := NewPreProcessor(map[string]string{"a": "struct A { x: f32 };"})
	pp.Register("b", "//@noded:include a\nstruct B { a: A };")

	out, err := pp.Process("//@noded:include a\n//@noded:include b")
	require.NoError(t, err)
	assert.Equal(t, 1, countOf(out, "struct A"))
	assert.Equal(t, 1, countOf(out, "struct B"))
}

func TestMissingEntryPoint(t *testing.T) {
	_, err := NewShader("empty", ShaderTypeVertex, "struct A { x: f32 };")
	assert.ErrorContains(t, err, "no @vertex entry point")
}

func TestValidationRejectsBrokenSource(t *testing.T) {
	_, err := NewShader("broken", ShaderTypeVertex, "@vertex fn vsMain( {", WithValidation(true))
	assert.ErrorContains(t, err, "invalid WGSL")
}

func TestStripComments(t *testing.T) {
	src := "a // one\nb /* two /* nested */ still */ c"
	assert.Equal(t, "a \nb  c", stripComments(src))
}

func countOf(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
