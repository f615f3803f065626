package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noded-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	registered []string
	draws      int
	writes     int
	released   bool
	failKey    string
}

func (b *recordingBackend) ConfigureSurface(width, height int) {}
func (b *recordingBackend) SetPresentMode(mode PresentMode)    {}
func (b *recordingBackend) SetClearColor(c common.Color)       {}

func (b *recordingBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.Key() == b.failKey {
		return errors.New("boom")
	}
	b.registered = append(b.registered, p.Key())
	return nil
}

func (b *recordingBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, int, []byte, int) error {
	return nil
}

func (b *recordingBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]wgpu.BufferUsage, map[int]uint64) error {
	return nil
}

func (b *recordingBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.writes += len(writes)
}

func (b *recordingBackend) BeginFrame() error { return nil }

func (b *recordingBackend) DrawCall(pipeline.Pipeline, bind_group_provider.BindGroupProvider, uint32, []bind_group_provider.BindGroupProvider) {
	b.draws++
}

func (b *recordingBackend) EndFrame() {}
func (b *recordingBackend) Present()  {}
func (b *recordingBackend) Release()  { b.released = true }

func newTestRenderer(b *recordingBackend) *renderer {
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       b,
	}
}

func TestRegisterPipelinesCachesByKey(t *testing.T) {
	b := &recordingBackend{}
	r := newTestRenderer(b)

	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("a"), pipeline.NewPipeline("b")))
	assert.Equal(t, []string{"a", "b"}, b.registered)
	assert.NotNil(t, r.Pipeline("a"))
	assert.Nil(t, r.Pipeline("missing"))
}

func TestRegisterPipelinesStopsAtFirstError(t *testing.T) {
	b := &recordingBackend{failKey: "bad"}
	r := newTestRenderer(b)

	err := r.RegisterPipelines(pipeline.NewPipeline("ok"), pipeline.NewPipeline("bad"), pipeline.NewPipeline("later"))
	assert.ErrorContains(t, err, "bad")
	assert.NotNil(t, r.Pipeline("ok"))
	assert.Nil(t, r.Pipeline("later"))
}

func TestDrawCallRequiresRegisteredPipeline(t *testing.T) {
	b := &recordingBackend{}
	r := newTestRenderer(b)
	mesh := bind_group_provider.NewBindGroupProvider("mesh")

	assert.Error(t, r.DrawCall("quad", mesh, 1, nil))
	assert.Zero(t, b.draws)

	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("quad")))
	require.NoError(t, r.DrawCall("quad", mesh, 1, nil))
	assert.Equal(t, 1, b.draws)
}

func TestWriteBuffersSkipsEmptyBatch(t *testing.T) {
	b := &recordingBackend{}
	r := newTestRenderer(b)
	p := bind_group_provider.NewBindGroupProvider("frame")

	r.WriteBuffers(nil)
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: p, Binding: 0, Data: []byte{1}}})
	assert.Equal(t, 1, b.writes)
}

func TestReleaseClearsCache(t *testing.T) {
	b := &recordingBackend{}
	r := newTestRenderer(b)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("quad")))

	r.Release()
	assert.True(t, b.released)
	assert.Nil(t, r.Pipeline("quad"))
}

func TestParsePresentMode(t *testing.T) {
	assert.Equal(t, PresentModeUncapped, ParsePresentMode("uncapped"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode("vsync"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode(""))
}

func TestBuilderOptionsArePending(t *testing.T) {
	r := newTestRenderer(&recordingBackend{})
	for _, opt := range []RendererBuilderOption{
		WithPipelines(pipeline.NewPipeline("a")),
		WithPresentMode(PresentModeUncapped),
		WithClearColor(common.ColorWhite),
		WithForceSoftwareRenderer(true),
	} {
		opt(r)
	}

	require.Len(t, r.pendingPipelines, 1)
	assert.Equal(t, "a", r.pendingPipelines[0].Key())
	assert.Equal(t, PresentModeUncapped, *r.pendingPresentMode)
	assert.Equal(t, common.ColorWhite, *r.pendingClearColor)
	assert.True(t, r.forceFallbackAdapter)
}
