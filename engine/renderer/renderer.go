package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/Carmen-Shannon/noded-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noded-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var log = logger.New("renderer")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingClearColor    *common.Color
	pendingPipelines     []pipeline.Pipeline
}

// Renderer defines the interface for the rendering system.
//
// It keeps a cache of registered pipelines and wraps a backend that owns the GPU device,
// the window surface and the per-frame command encoding. One frame is recorded between
// BeginFrame and EndFrame and shown by Present.
type Renderer interface {
	// Pipeline retrieves the registered Pipeline associated with the given key.
	//
	// Parameters:
	//   - key: the unique identifier of the pipeline
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if no pipeline is registered under key
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects of each pipeline and caches it by key.
	// A pipeline registered under an existing key replaces and releases the old one.
	//
	// Parameters:
	//   - pipelines: the pipeline descriptions to register
	//
	// Returns:
	//   - error: the first creation error; pipelines before it stay registered
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitMeshBuffers uploads mesh data into vertex and index buffers owned by the provider.
	// Pass nil indexData for a non-indexed mesh; DrawCall then draws vertexCount vertices.
	//
	// Parameters:
	//   - provider: receives the buffers
	//   - vertexData: the packed vertex bytes
	//   - vertexCount: the number of vertices in vertexData
	//   - indexData: packed uint32 indices, or nil
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if a buffer fails to create
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group of provider from a layout descriptor. Buffers are
	// created for bindings the provider does not hold yet, sized by MinBindingSize unless
	// bufferSizeOverrides has an entry for the binding.
	//
	// Parameters:
	//   - provider: receives the layout, buffers and bind group
	//   - descriptor: the bind group layout descriptor
	//   - bufferUsageOverrides: extra usage flags per binding, may be nil
	//   - bufferSizeOverrides: buffer sizes per binding, may be nil
	//
	// Returns:
	//   - error: an error if any GPU object fails to create
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues buffer writes. Writes to bindings without a buffer are skipped.
	//
	// Parameters:
	//   - writes: the writes to queue, in order
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and starts the frame's render pass.
	//
	// Returns:
	//   - error: an error if the surface is unavailable or the previous frame was not presented
	BeginFrame() error

	// DrawCall records a draw of meshProvider with the given pipeline. bindGroups are bound
	// to consecutive group indices starting at 0.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: the provider holding the vertex (and optional index) buffer
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: the providers whose bind groups are bound, in group order
	//
	// Returns:
	//   - error: an error if no pipeline is registered under pipelineKey
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame finishes the render pass and submits the frame's commands.
	EndFrame()

	// Present shows the frame acquired by BeginFrame.
	Present()

	// Resize reconfigures the surface for a new framebuffer size.
	Resize(width, height int)

	// SetPresentMode changes the present mode; it takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// Release frees every registered pipeline and the GPU device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the surface of the given window.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the window providing the surface descriptor and framebuffer size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter or device is available or a pipeline fails to register
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// options first so forceFallbackAdapter is known before the adapter request
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter)
	default:
		return nil, fmt.Errorf("unknown renderer backend %d", backendType)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}
	r.backend.ConfigureSurface(surface.Width(), surface.Height())

	if err := r.RegisterPipelines(r.pendingPipelines...); err != nil {
		r.Release()
		return nil, err
	}
	r.pendingPipelines = nil

	log.Infof("renderer ready (%dx%d)", surface.Width(), surface.Height())
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %s: %w", p.Key(), err)
		}

		r.mu.Lock()
		if old, ok := r.pipelineCache[p.Key()]; ok && old != p {
			old.Release()
		}
		r.pipelineCache[p.Key()] = p
		r.mu.Unlock()
		log.Debugf("registered pipeline %s", p.Key())
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, vertexCount, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	if len(writes) == 0 {
		return
	}
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("pipeline %s is not registered", pipelineKey)
	}
	r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
