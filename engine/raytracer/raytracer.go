// Package raytracer drives the progressive path tracing kernel: it owns the GPU resources
// for the full-screen quad, the render parameters and the compiled scene, and decides each
// frame how many samples to add to the accumulation buffer.
package raytracer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/Carmen-Shannon/noded-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noded-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/noded-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/Carmen-Shannon/noded-go/engine/sky"
	"github.com/cogentcore/webgpu/wgpu"
)

var log = logger.New("raytracer")

// PipelineKey is the key the raytracer registers its render pipeline under.
const PipelineKey = "raytracer"

// DefaultMaxViewportResolution bounds the accumulation buffer (pixels).
const DefaultMaxViewportResolution = 2048 * 2048

// ErrViewportTooLarge is returned when the viewport exceeds the accumulation buffer.
var ErrViewportTooLarge = errors.New("viewport exceeds the max viewport resolution")

const (
	groupVertex = iota
	groupImage
	groupParams
	groupScene
)

const (
	bindingFrameData = 0
	bindingImage     = 1

	bindingCamera   = 0
	bindingSampling = 1
	bindingSky      = 2

	bindingSpheres            = 0
	bindingMaterials          = 1
	bindingTextureDescriptors = 2
	bindingTexels             = 3
	bindingLights             = 4
)

// Backend is the subset of renderer.Renderer the raytracer needs.
type Backend interface {
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	Pipeline(key string) pipeline.Pipeline
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

// Raytracer renders a compiled scene progressively into a full-screen quad.
type Raytracer struct {
	backend  Backend
	pipeline pipeline.Pipeline

	mesh        bind_group_provider.BindGroupProvider
	vertexGroup bind_group_provider.BindGroupProvider
	imageGroup  bind_group_provider.BindGroupProvider
	paramsGroup bind_group_provider.BindGroupProvider
	sceneGroup  bind_group_provider.BindGroupProvider

	maxViewportResolution uint32
	validateShaders       bool
	initialParams         *RenderParams

	params      RenderParams
	hasParams   bool
	progress    RenderProgress
	frameNumber uint32
	sceneReady  bool
	sceneCounts scene.GPUBuffers
}

// New compiles the kernel, registers its pipeline and allocates every bind group. The scene
// group starts with an empty scene; SceneReady reports false until PrepareFrame uploads one.
//
// Parameters:
//   - backend: the GPU backend, usually a renderer.Renderer
//   - opts: variadic list of RaytracerBuilderOption functions
//
// Returns:
//   - *Raytracer: the raytracer
//   - error: an error if the kernel, pipeline or any buffer cannot be created, or the
//     initial params are invalid
func New(backend Backend, opts ...RaytracerBuilderOption) (*Raytracer, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	r := &Raytracer{
		backend:               backend,
		maxViewportResolution: DefaultMaxViewportResolution,
		frameNumber:           1,
	}
	for _, opt := range opts {
		opt(r)
	}

	p, err := r.buildPipeline()
	if err != nil {
		return nil, err
	}
	if err := backend.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("failed to register raytracer pipeline: %w", err)
	}
	r.pipeline = p

	if err := r.initBindGroups(); err != nil {
		r.Release()
		return nil, err
	}

	if r.initialParams != nil {
		if err := r.setRenderParams(*r.initialParams, true); err != nil {
			r.Release()
			return nil, err
		}
	}
	return r, nil
}

func (r *Raytracer) buildPipeline() (pipeline.Pipeline, error) {
	pp := shader.NewPreProcessor(map[string]string{"scene_types": scene.GPUSceneTypesSource})

	vs, err := shader.NewShader(PipelineKey+" Vertex", shader.ShaderTypeVertex, kernelSource,
		shader.WithPreProcessor(pp),
		shader.WithGroups(groupVertex),
		shader.WithValidation(r.validateShaders),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create raytracer vertex shader: %w", err)
	}
	fs, err := shader.NewShader(PipelineKey+" Fragment", shader.ShaderTypeFragment, kernelSource,
		shader.WithPreProcessor(pp),
		shader.WithGroups(groupImage, groupParams, groupScene),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create raytracer fragment shader: %w", err)
	}

	return pipeline.NewPipeline(PipelineKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
		pipeline.WithWriteMask(wgpu.ColorWriteMaskAll),
		pipeline.WithBlendState(nil),
	), nil
}

func (r *Raytracer) initBindGroups() error {
	layouts := r.pipeline.BindGroupLayouts()

	r.mesh = bind_group_provider.NewBindGroupProvider("Raytracer Quad")
	if err := r.backend.InitMeshBuffers(r.mesh, marshalVertices(quadVertices), len(quadVertices), nil, 0); err != nil {
		return fmt.Errorf("failed to create quad vertex buffer: %w", err)
	}

	r.vertexGroup = bind_group_provider.NewBindGroupProvider("Raytracer Vertex Uniforms")
	if err := r.backend.InitBindGroup(r.vertexGroup, layouts[groupVertex], nil, nil); err != nil {
		return fmt.Errorf("failed to create vertex uniform bind group: %w", err)
	}

	r.imageGroup = bind_group_provider.NewBindGroupProvider("Raytracer Image")
	imageSize := map[int]uint64{bindingImage: uint64(r.maxViewportResolution) * pixelSize}
	if err := r.backend.InitBindGroup(r.imageGroup, layouts[groupImage], nil, imageSize); err != nil {
		return fmt.Errorf("failed to create image bind group: %w", err)
	}

	r.paramsGroup = bind_group_provider.NewBindGroupProvider("Raytracer Params")
	paramsSize := map[int]uint64{bindingSky: sky.StateSize}
	if err := r.backend.InitBindGroup(r.paramsGroup, layouts[groupParams], nil, paramsSize); err != nil {
		return fmt.Errorf("failed to create params bind group: %w", err)
	}

	empty := scene.Scene{}
	group, counts, err := r.createSceneGroup(&empty)
	if err != nil {
		return err
	}
	r.sceneGroup = group
	r.sceneCounts = counts

	uniforms := quadVertexUniforms()
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.vertexGroup, Binding: 0, Data: uniforms.Marshal()},
	})
	return nil
}

// PrepareFrame applies params, uploads sc when it is non-nil and writes the per-frame
// uniforms. Supplying a scene forces the params to be rewritten and restarts accumulation.
//
// Parameters:
//   - params: the render params for this frame
//   - sc: a freshly compiled scene, or nil to keep the current one
//
// Returns:
//   - error: a validation error, or an error from the scene upload. On error no buffer
//     of the failing step has been written.
func (r *Raytracer) PrepareFrame(params RenderParams, sc *scene.Scene) error {
	if err := r.setRenderParams(params, sc != nil); err != nil {
		return err
	}
	if sc != nil {
		if err := r.rebuildScene(sc); err != nil {
			return err
		}
	}

	sampling := r.progress.NextFrame(r.params.Sampling)
	frame := GPUFrameData{
		Width:       r.params.ViewportSize[0],
		Height:      r.params.ViewportSize[1],
		FrameNumber: r.frameNumber,
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.paramsGroup, Binding: bindingSampling, Data: sampling.Marshal()},
		{Provider: r.imageGroup, Binding: bindingFrameData, Data: frame.Marshal()},
	})
	r.frameNumber++
	return nil
}

// RenderFrame records the draw of the quad into the current frame.
func (r *Raytracer) RenderFrame() error {
	return r.backend.DrawCall(PipelineKey, r.mesh, 1, []bind_group_provider.BindGroupProvider{
		r.vertexGroup,
		r.imageGroup,
		r.paramsGroup,
		r.sceneGroup,
	})
}

// Progress returns the accumulated fraction of the max samples per pixel.
func (r *Raytracer) Progress() float32 {
	return r.progress.Progress(r.params.Sampling.MaxSamplesPerPixel)
}

// SceneReady reports whether a compiled scene has been uploaded.
func (r *Raytracer) SceneReady() bool {
	return r.sceneReady
}

// Params returns the last accepted render params.
func (r *Raytracer) Params() RenderParams {
	return r.params
}

// FrameNumber returns the number the next prepared frame will carry.
func (r *Raytracer) FrameNumber() uint32 {
	return r.frameNumber
}

// SceneCounts returns the element counts of the uploaded scene.
func (r *Raytracer) SceneCounts() (spheres, lights, textures int) {
	return r.sceneCounts.SphereCount, r.sceneCounts.LightCount, r.sceneCounts.TextureCount
}

// Release frees every bind group the raytracer owns. The pipeline belongs to the backend.
func (r *Raytracer) Release() {
	for _, p := range []bind_group_provider.BindGroupProvider{r.mesh, r.vertexGroup, r.imageGroup, r.paramsGroup, r.sceneGroup} {
		if p != nil {
			p.Release()
		}
	}
	r.sceneReady = false
}

func (r *Raytracer) setRenderParams(params RenderParams, force bool) error {
	if !force && r.hasParams && params == r.params {
		return nil
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if err := params.ValidateViewport(); err != nil {
		return err
	}
	if pixels := uint64(params.ViewportSize[0]) * uint64(params.ViewportSize[1]); pixels > uint64(r.maxViewportResolution) {
		return fmt.Errorf("%w: %d pixels, max %d", ErrViewportTooLarge, pixels, r.maxViewportResolution)
	}

	skyState, err := sky.New(params.Sky)
	if err != nil {
		return &SkyModelError{Err: err}
	}
	cam := NewGPUCamera(params.Camera, params.ViewportSize)
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.paramsGroup, Binding: bindingSky, Data: skyState.Marshal()},
		{Provider: r.paramsGroup, Binding: bindingCamera, Data: cam.Marshal()},
	})

	r.params = params
	r.hasParams = true
	r.progress.Reset()
	return nil
}
