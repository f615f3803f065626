package viewer

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/camera"
	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/Carmen-Shannon/noded-go/engine/profiler"
	"github.com/Carmen-Shannon/noded-go/engine/raytracer"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/Carmen-Shannon/noded-go/engine/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracer struct {
	params  []raytracer.RenderParams
	scenes  []*scene.Scene
	renders int
	ready   bool
	// accept controls whether a submitted scene makes the tracer ready
	accept  bool
	failErr error
}

func (f *fakeTracer) PrepareFrame(params raytracer.RenderParams, sc *scene.Scene) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.params = append(f.params, params)
	f.scenes = append(f.scenes, sc)
	if sc != nil && f.accept {
		f.ready = true
	}
	return nil
}

func (f *fakeTracer) RenderFrame() error {
	f.renders++
	return nil
}

func (f *fakeTracer) Progress() float32 { return 0.5 }

func (f *fakeTracer) SceneReady() bool { return f.ready }

var viewport = common.Rect{Width: 64, Height: 32}

func newTestViewer(t *testing.T, opts ...ViewerBuilderOption) (*Viewer, *fakeTracer) {
	t.Helper()
	tr := &fakeTracer{accept: true}
	v, err := NewViewer(tr, opts...)
	require.NoError(t, err)
	return v, tr
}

func connect(t *testing.T, v *Viewer, from, to graph.NodeID, input int) {
	t.Helper()
	require.NoError(t, v.Connect(graph.OutPinID{Node: from}, graph.InPinID{Node: to, Input: input}))
}

type chain struct {
	sphere, scene, camera, render, output graph.NodeID
}

// buildChain wires sphere -> scene -> camera -> render -> output.
func buildChain(t *testing.T, v *Viewer) chain {
	t.Helper()
	c := chain{
		sphere: v.Insert(node.New(node.KindSphere)),
		scene:  v.Insert(node.New(node.KindScene)),
		camera: v.Insert(node.New(node.KindCamera)),
		render: v.Insert(node.New(node.KindRaytracerRender)),
		output: v.Insert(node.New(node.KindOutput)),
	}
	connect(t, v, c.sphere, c.scene, 0)
	connect(t, v, c.scene, c.camera, 6)
	connect(t, v, c.camera, c.render, 0)
	connect(t, v, c.render, c.output, 0)
	return c
}

func collectionNodes(t *testing.T, v *Viewer, id graph.NodeID) []graph.NodeID {
	t.Helper()
	n, err := v.Context().Node(id)
	require.NoError(t, err)
	return n.Collection.Nodes
}

func TestNewViewerRequiresTracer(t *testing.T) {
	_, err := NewViewer(nil)
	assert.ErrorIs(t, err, ErrNoTracer)
}

func TestConnectRejectsIncompatiblePins(t *testing.T) {
	v, _ := newTestViewer(t)
	num := v.Insert(node.New(node.KindNumber))
	sc := v.Insert(node.New(node.KindScene))

	err := v.Connect(graph.OutPinID{Node: num}, graph.InPinID{Node: sc, Input: 0})
	assert.ErrorIs(t, err, ErrIncompatiblePins)
	assert.Empty(t, v.Context().Graph.Wires())

	err = v.Connect(graph.OutPinID{Node: num}, graph.InPinID{Node: sc, Input: 3})
	assert.ErrorIs(t, err, ErrIncompatiblePins)
}

func TestConnectReplacesExistingWire(t *testing.T) {
	v, _ := newTestViewer(t)
	a := node.New(node.KindNumber)
	a.Number.Value = 2
	b := node.New(node.KindNumber)
	b.Number.Value = 3
	aID, bID := v.Insert(a), v.Insert(b)
	sphere := node.New(node.KindSphere)
	sphereID := v.Insert(sphere)

	connect(t, v, aID, sphereID, 1)
	assert.Equal(t, float32(2), sphere.Sphere.Radius.Get())
	connect(t, v, bID, sphereID, 1)
	assert.Equal(t, float32(3), sphere.Sphere.Radius.Get())
	assert.Equal(t, []graph.OutPinID{{Node: bID}}, v.Context().Graph.InRemotes(graph.InPinID{Node: sphereID, Input: 1}))

	require.NoError(t, v.Disconnect(graph.OutPinID{Node: bID}, graph.InPinID{Node: sphereID, Input: 1}))
	assert.Equal(t, float32(1), sphere.Sphere.Radius.Get())
}

func TestCollectionDisconnectShiftsLaterInputs(t *testing.T) {
	v, _ := newTestViewer(t)
	coll := v.Insert(node.New(node.KindCollection))
	s1 := v.Insert(node.New(node.KindSphere))
	s2 := v.Insert(node.New(node.KindSphere))
	s3 := v.Insert(node.New(node.KindSphere))
	connect(t, v, s1, coll, 0)
	connect(t, v, s2, coll, 1)
	connect(t, v, s3, coll, 2)

	require.NoError(t, v.Disconnect(graph.OutPinID{Node: s1}, graph.InPinID{Node: coll, Input: 0}))

	assert.Equal(t, []graph.NodeID{s2, s3}, collectionNodes(t, v, coll))
	wires := v.Context().Graph.InputWires(coll)
	require.Len(t, wires, 2)
	assert.Equal(t, graph.Wire{Out: graph.OutPinID{Node: s2}, In: graph.InPinID{Node: coll, Input: 0}}, wires[0])
	assert.Equal(t, graph.Wire{Out: graph.OutPinID{Node: s3}, In: graph.InPinID{Node: coll, Input: 1}}, wires[1])
}

func TestCollectionConnectIntoOccupiedSlotReplaces(t *testing.T) {
	v, _ := newTestViewer(t)
	coll := v.Insert(node.New(node.KindCollection))
	s1 := v.Insert(node.New(node.KindSphere))
	s2 := v.Insert(node.New(node.KindSphere))
	s3 := v.Insert(node.New(node.KindSphere))
	connect(t, v, s1, coll, 0)
	connect(t, v, s2, coll, 1)

	connect(t, v, s3, coll, 0)

	assert.Equal(t, []graph.NodeID{s3, s2}, collectionNodes(t, v, coll))
	wires := v.Context().Graph.InputWires(coll)
	require.Len(t, wires, 2)
	assert.Equal(t, s3, wires[0].Out.Node)
	assert.Equal(t, 0, wires[0].In.Input)
	assert.Equal(t, s2, wires[1].Out.Node)
	assert.Equal(t, 1, wires[1].In.Input)
}

func TestOutputRegistersRender(t *testing.T) {
	v, _ := newTestViewer(t)
	c := buildChain(t, v)

	id, ok := v.Render()
	require.True(t, ok)
	assert.Equal(t, c.render, id)

	require.NoError(t, v.Disconnect(graph.OutPinID{Node: c.render}, graph.InPinID{Node: c.output, Input: 0}))
	_, ok = v.Render()
	assert.False(t, ok)
}

func TestDrawSubmitsSceneOnceReady(t *testing.T) {
	p := profiler.NewProfiler()
	v, tr := newTestViewer(t, WithProfiler(p))
	buildChain(t, v)

	require.NoError(t, v.Draw(viewport))
	require.Len(t, tr.scenes, 1)
	require.NotNil(t, tr.scenes[0])
	assert.Len(t, tr.scenes[0].Spheres, 1)
	assert.Equal(t, [2]uint32{64, 32}, tr.params[0].ViewportSize)
	assert.Equal(t, config.Default().Sampling, tr.params[0].Sampling)
	assert.Equal(t, config.Default().Sky, tr.params[0].Sky)

	require.NoError(t, v.Draw(viewport))
	require.Len(t, tr.scenes, 2)
	assert.Nil(t, tr.scenes[1])
	assert.Equal(t, 2, tr.renders)

	expected := `
# HELP noded_scene_recompiles_total Scene compilations that produced a new scene.
# TYPE noded_scene_recompiles_total counter
noded_scene_recompiles_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(p.Registry(), strings.NewReader(expected), "noded_scene_recompiles_total"))
}

func TestDrawResubmitsUntilTracerAccepts(t *testing.T) {
	v, tr := newTestViewer(t)
	tr.accept = false
	buildChain(t, v)

	require.NoError(t, v.Draw(viewport))
	require.NoError(t, v.Draw(viewport))
	require.Len(t, tr.scenes, 2)
	assert.NotNil(t, tr.scenes[0])
	assert.NotNil(t, tr.scenes[1])
}

func TestDrawWithoutRenderOrViewportDoesNothing(t *testing.T) {
	v, tr := newTestViewer(t)
	require.NoError(t, v.Draw(viewport))

	buildChain(t, v)
	require.NoError(t, v.Draw(common.Rect{Width: 0, Height: 32}))
	assert.Empty(t, tr.params)
	assert.Zero(t, tr.renders)
}

func TestDrawFailureCountsFrameError(t *testing.T) {
	p := profiler.NewProfiler()
	v, tr := newTestViewer(t, WithProfiler(p))
	buildChain(t, v)
	tr.failErr = &raytracer.VfovOutOfRangeError{Vfov: 120}

	err := v.Draw(viewport)
	assert.ErrorIs(t, err, raytracer.ErrVfovOutOfRange)
	assert.Zero(t, tr.renders)

	expected := `
# HELP noded_frame_errors_total Frames that failed to prepare or render.
# TYPE noded_frame_errors_total counter
noded_frame_errors_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(p.Registry(), strings.NewReader(expected), "noded_frame_errors_total"))
}

func TestFailedFrameResubmitsRecompiledScene(t *testing.T) {
	v, tr := newTestViewer(t)
	c := buildChain(t, v)
	require.NoError(t, v.Draw(viewport))

	require.NoError(t, v.Edit(c.sphere, func(n *node.Node) { *n.Sphere.Radius.AsMut() = 3 }))
	tr.failErr = errors.New("scene upload failed")
	require.Error(t, v.Draw(viewport))

	tr.failErr = nil
	require.NoError(t, v.Draw(viewport))
	last := tr.scenes[len(tr.scenes)-1]
	require.NotNil(t, last)
	assert.Equal(t, float32(3), last.Spheres[0].Radius)

	require.NoError(t, v.Draw(viewport))
	assert.Nil(t, tr.scenes[len(tr.scenes)-1])
}

func TestRewiredCameraUploadsItsScene(t *testing.T) {
	v, tr := newTestViewer(t)
	c := buildChain(t, v)
	require.NoError(t, v.Draw(viewport))

	other := v.Insert(node.New(node.KindScene))
	coll := v.Insert(node.New(node.KindCollection))
	connect(t, v, v.Insert(node.New(node.KindSphere)), coll, 0)
	connect(t, v, v.Insert(node.New(node.KindSphere)), coll, 1)
	connect(t, v, coll, other, 0)

	connect(t, v, other, c.camera, 6)
	require.NoError(t, v.Draw(viewport))
	require.NotNil(t, tr.scenes[len(tr.scenes)-1])
	assert.Len(t, tr.scenes[len(tr.scenes)-1].Spheres, 2)

	connect(t, v, c.scene, c.camera, 6)
	require.NoError(t, v.Draw(viewport))
	last := tr.scenes[len(tr.scenes)-1]
	require.NotNil(t, last)
	assert.Len(t, last.Spheres, 1)
}

func TestValueEditRecompilesScene(t *testing.T) {
	v, tr := newTestViewer(t)
	c := buildChain(t, v)
	num := node.New(node.KindNumber)
	num.Number.Value = 2
	numID := v.Insert(num)
	connect(t, v, numID, c.sphere, 1)

	require.NoError(t, v.Draw(viewport))
	require.NoError(t, v.Edit(numID, func(n *node.Node) { n.Number.Value = 4 }))
	require.NoError(t, v.Draw(viewport))

	require.Len(t, tr.scenes, 2)
	require.NotNil(t, tr.scenes[1])
	assert.Equal(t, float32(4), tr.scenes[1].Spheres[0].Radius)
}

func TestAfterShowMovesRenderCamera(t *testing.T) {
	v, tr := newTestViewer(t, WithController(camera.NewController(camera.WithMoveSpeed(1))))
	c := buildChain(t, v)
	require.NoError(t, v.Draw(viewport))

	assert.False(t, v.AfterShow(Input{Camera: camera.Input{Dt: 0.1}}))
	assert.True(t, v.AfterShow(Input{Camera: camera.Input{Forward: true, Dt: 1}}))
	require.NoError(t, v.Draw(viewport))

	camNode, err := v.Context().Node(c.camera)
	require.NoError(t, err)
	require.Len(t, tr.params, 2)
	assert.Equal(t, camNode.Camera.Position.Get(), tr.params[1].Camera.EyePos)
	assert.NotEqual(t, tr.params[0].Camera.EyePos, tr.params[1].Camera.EyePos)
}

func TestRemoveSeversWiresAndSubscriptions(t *testing.T) {
	v, tr := newTestViewer(t)
	c := buildChain(t, v)
	require.NoError(t, v.Draw(viewport))

	require.NoError(t, v.Remove(c.sphere))
	assert.False(t, v.Context().Graph.Contains(c.sphere))
	for _, w := range v.Context().Graph.Wires() {
		assert.NotEqual(t, c.sphere, w.Out.Node)
		assert.NotEqual(t, c.sphere, w.In.Node)
	}

	require.NoError(t, v.Draw(viewport))
	require.Len(t, tr.scenes, 2)
	require.NotNil(t, tr.scenes[1])
	assert.Empty(t, tr.scenes[1].Spheres)

	require.NoError(t, v.Remove(c.render))
	_, ok := v.Render()
	assert.False(t, ok)
}

func TestRemoveNodeFeedingCollectionTwice(t *testing.T) {
	v, _ := newTestViewer(t)
	coll := v.Insert(node.New(node.KindCollection))
	s1 := v.Insert(node.New(node.KindSphere))
	s2 := v.Insert(node.New(node.KindSphere))
	connect(t, v, s1, coll, 0)
	connect(t, v, s2, coll, 1)
	connect(t, v, s1, coll, 2)

	require.NoError(t, v.Remove(s1))
	assert.Equal(t, []graph.NodeID{s2}, collectionNodes(t, v, coll))
	assert.Len(t, v.Context().Graph.Wires(), 1)
}

func TestDuplicateIsUnwired(t *testing.T) {
	v, _ := newTestViewer(t)
	num := node.New(node.KindNumber)
	num.Number.Value = 3
	numID := v.Insert(num)
	sphere := node.New(node.KindSphere)
	*sphere.Sphere.Center.AsMut() = [3]float32{1, 2, 3}
	sphereID := v.Insert(sphere)
	connect(t, v, numID, sphereID, 1)

	dupID, err := v.Duplicate(sphereID)
	require.NoError(t, err)
	dup, err := v.Context().Node(dupID)
	require.NoError(t, err)

	assert.Equal(t, node.KindSphere, dup.Kind)
	assert.Equal(t, sphere.Sphere.Center.Get(), dup.Sphere.Center.Get())
	assert.False(t, dup.Sphere.Radius.IsConnected())
	assert.Equal(t, float32(1), dup.Sphere.Radius.Get())
	require.NotNil(t, dup.Sphere.Inline)
	assert.NotSame(t, sphere.Sphere.Inline, dup.Sphere.Inline)
	assert.Empty(t, v.Context().Graph.InputWires(dupID))

	coll := v.Insert(node.New(node.KindCollection))
	connect(t, v, sphereID, coll, 0)
	collDup, err := v.Duplicate(coll)
	require.NoError(t, err)
	assert.Empty(t, collectionNodes(t, v, collDup))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := storage.NewMemoryStorage()
	v, _ := newTestViewer(t, WithStorage(store))
	c := buildChain(t, v)
	num := node.New(node.KindNumber)
	num.Number.Value = 2.5
	connect(t, v, v.Insert(num), c.sphere, 1)
	coll := v.Insert(node.New(node.KindCollection))
	connect(t, v, c.sphere, coll, 0)

	settings := config.Default()
	settings.Sampling.NumSamplesPerPixel = 4
	v.SetSettings(settings)
	style := DefaultStyle()
	style.Zoom = 2
	v.SetStyle(style)
	require.NoError(t, v.Save())

	restored, tr := newTestViewer(t, WithStorage(store))
	require.NoError(t, restored.Load())

	id, ok := restored.Render()
	require.True(t, ok)
	assert.Equal(t, c.render, id)
	assert.Equal(t, settings, restored.Settings())
	assert.Equal(t, style, restored.Style())
	assert.Equal(t, []graph.NodeID{c.sphere}, collectionNodes(t, restored, coll))

	sphere, err := restored.Context().Node(c.sphere)
	require.NoError(t, err)
	assert.True(t, sphere.Sphere.Radius.IsConnected())
	assert.Equal(t, float32(2.5), sphere.Sphere.Radius.Get())

	require.NoError(t, restored.Draw(viewport))
	require.NotNil(t, tr.scenes[0])
	assert.Equal(t, float32(2.5), tr.scenes[0].Spheres[0].Radius)
	assert.Equal(t, uint32(4), tr.params[0].Sampling.NumSamplesPerPixel)
}

func TestLoadKeepsDefaultsForCorruptValues(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.SetString(storage.KeyGraph, "{")
	store.SetString(storage.KeyStyle, "[]")
	store.SetString(storage.KeySettings, "nope")

	v, _ := newTestViewer(t, WithStorage(store))
	require.NoError(t, v.Load())
	assert.Equal(t, config.Default(), v.Settings())
	assert.Equal(t, DefaultStyle(), v.Style())
	assert.Zero(t, v.Context().Graph.Len())
}

func TestSaveWithoutStorage(t *testing.T) {
	v, _ := newTestViewer(t)
	assert.ErrorIs(t, v.Save(), ErrNoStorage)
	assert.ErrorIs(t, v.Load(), ErrNoStorage)
}

func TestReloadBumpsTextureRevisions(t *testing.T) {
	v, _ := newTestViewer(t)
	tex := node.New(node.KindTexture)
	texID := v.Insert(tex)
	require.NoError(t, v.SetTexturePath(texID, filepath.Join(t.TempDir(), "missing.png")))

	v.AfterShow(Input{Reload: true})
	assert.Equal(t, uint64(1), tex.Texture.Revision)

	num := v.Insert(node.New(node.KindNumber))
	assert.True(t, errors.Is(v.SetTexturePath(num, "x.png"), ErrNotTexture))
}

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestWatcherReloadsChangedTexture(t *testing.T) {
	w, err := loader.NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	path := filepath.Join(t.TempDir(), "albedo.png")
	writePNG(t, path, color.White)

	v, _ := newTestViewer(t, WithWatcher(w))
	tex := node.New(node.KindTexture)
	tex.Texture.Path = path
	v.Insert(tex)

	writePNG(t, path, color.Black)
	require.Eventually(t, func() bool {
		_ = v.Draw(viewport)
		return tex.Texture.Revision > 0
	}, 5*time.Second, 20*time.Millisecond)
}
