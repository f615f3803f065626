package node

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/Carmen-Shannon/noded-go/engine/subscription"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, opts ...loader.LoaderBuilderOption) *Context {
	t.Helper()
	return NewContext(graph.New[*Node](), loader.NewLoader(loader.BackendTypeImage, opts...))
}

func wire(t *testing.T, ctx *Context, from graph.NodeID, to graph.NodeID, input int) {
	t.Helper()
	out := graph.OutPinID{Node: from}
	in := graph.InPinID{Node: to, Input: input}
	require.True(t, ctx.Graph.Connect(out, in))
	require.NoError(t, ctx.ConnectInput(out, in))
}

func unwire(t *testing.T, ctx *Context, from graph.NodeID, to graph.NodeID, input int) {
	t.Helper()
	in := graph.InPinID{Node: to, Input: input}
	require.True(t, ctx.Graph.Disconnect(graph.OutPinID{Node: from}, in))
	require.NoError(t, ctx.DisconnectInput(in))
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

func TestDisconnectRestoresUserValue(t *testing.T) {
	ctx := newTestContext(t)
	num := New(KindNumber)
	num.Number.Value = 4
	numID := ctx.Graph.Insert(num)
	sphere := New(KindSphere)
	*sphere.Sphere.Radius.AsMut() = 2.5
	sphereID := ctx.Graph.Insert(sphere)

	wire(t, ctx, numID, sphereID, 1)
	assert.Equal(t, float32(4), sphere.Sphere.Radius.Get())

	unwire(t, ctx, numID, sphereID, 1)
	assert.Equal(t, float32(2.5), sphere.Sphere.Radius.Get())
}

func TestColorAndNumberFeedVectorInputs(t *testing.T) {
	ctx := newTestContext(t)
	col := New(KindColor)
	col.Color.Value = common.Color{0.2, 0.4, 0.6}
	colID := ctx.Graph.Insert(col)
	num := New(KindNumber)
	num.Number.Value = 3
	numID := ctx.Graph.Insert(num)
	lam := New(KindLambertian)
	lamID := ctx.Graph.Insert(lam)
	sphere := New(KindSphere)
	sphereID := ctx.Graph.Insert(sphere)

	wire(t, ctx, colID, lamID, 0)
	wire(t, ctx, numID, sphereID, 0)

	assert.Equal(t, common.Color{0.2, 0.4, 0.6}, lam.Lambertian.Albedo.Get())
	assert.Equal(t, mgl32.Vec3{3, 3, 3}, sphere.Sphere.Center.Get())
}

func TestConnectRejectsWrongVariant(t *testing.T) {
	ctx := newTestContext(t)
	numID := ctx.Graph.Insert(New(KindNumber))
	lamID := ctx.Graph.Insert(New(KindLambertian))

	err := ctx.ConnectInput(graph.OutPinID{Node: numID}, graph.InPinID{Node: lamID, Input: 1})
	assert.ErrorIs(t, err, ErrUnexpectedNode)

	err = ctx.ConnectInput(graph.OutPinID{Node: numID}, graph.InPinID{Node: lamID, Input: 7})
	assert.ErrorIs(t, err, ErrInputOutOfRange)
}

func TestSceneFlagsAfterCompile(t *testing.T) {
	ctx := newTestContext(t)
	sceneID := ctx.Graph.Insert(New(KindScene))
	s, err := ctx.Scene(sceneID)
	require.NoError(t, err)
	assert.Equal(t, scene.DirtyInit, s.Flags())

	res, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, Recalculated, res)
	assert.Equal(t, scene.DirtyNone, s.Flags())

	s.MarkDirty(scene.DirtyMaterialValue)
	res, err = ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, Recalculated, res)
	assert.True(t, s.Flags().IsClean())
}

func TestRecalculateTwiceIsNothing(t *testing.T) {
	ctx := newTestContext(t)
	sphereID := ctx.Graph.Insert(New(KindSphere))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, sphereID, sceneID, 0)

	res, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, Recalculated, res)

	res, err = ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, Nothing, res)
}

func TestSphereSceneEndToEnd(t *testing.T) {
	ctx := newTestContext(t)
	sphere := New(KindSphere)
	*sphere.Sphere.Inline.Lambertian.Albedo.AsMut() = common.ColorGray
	sphereID := ctx.Graph.Insert(sphere)
	sceneID := ctx.Graph.Insert(New(KindScene))
	cameraID := ctx.Graph.Insert(New(KindCamera))
	renderID := ctx.Graph.Insert(New(KindRaytracerRender))
	wire(t, ctx, sphereID, sceneID, 0)
	wire(t, ctx, sceneID, cameraID, 6)
	wire(t, ctx, cameraID, renderID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	compiled := s.Compiled()
	require.Len(t, compiled.Spheres, 1)
	require.Len(t, compiled.Materials, 1)
	require.Len(t, compiled.Textures, 1)
	assert.Equal(t, scene.MaterialLambertian, compiled.Materials[0].Kind)
	assert.Equal(t, float32(1), compiled.Spheres[0].Radius)
	assert.Equal(t, [3]float32{}, compiled.Spheres[0].Center)
	assert.Equal(t, [3]float32(common.ColorGray), compiled.Textures[0].Pixels[0])

	unwire(t, ctx, sphereID, sceneID, 0)
	res, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, Recalculated, res)
	assert.Empty(t, s.Compiled().Spheres)
	assert.Empty(t, s.Tracked())
	assert.False(t, sphere.Subscriptions().HasSubscription(sceneID, subscription.OnChange))
}

func TestValueChangeMarksSceneDirty(t *testing.T) {
	ctx := newTestContext(t)
	num := New(KindNumber)
	num.Number.Value = 2
	numID := ctx.Graph.Insert(num)
	sphereID := ctx.Graph.Insert(New(KindSphere))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, numID, sphereID, 1)
	wire(t, ctx, sphereID, sceneID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	require.True(t, s.Flags().IsClean())

	num.Number.Value = 5
	require.NoError(t, ctx.Changed(numID))
	assert.Equal(t, scene.DirtyAll, s.Flags())

	_, err = ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, float32(5), s.Compiled().Spheres[0].Radius)
}

func TestSharedMaterialAndTextureIndices(t *testing.T) {
	ctx := newTestContext(t, loader.WithCache(false))
	path := filepath.Join(t.TempDir(), "wood.png")
	writePNG(t, path, color.NRGBA{R: 255, G: 128, A: 255})

	tex := New(KindTexture)
	tex.Texture.Path = path
	texID := ctx.Graph.Insert(tex)
	metalID := ctx.Graph.Insert(New(KindMetal))
	s1 := ctx.Graph.Insert(New(KindSphere))
	s2 := ctx.Graph.Insert(New(KindSphere))
	coll := ctx.Graph.Insert(New(KindCollection))
	sceneID := ctx.Graph.Insert(New(KindScene))

	wire(t, ctx, texID, metalID, 2)
	wire(t, ctx, metalID, s1, 2)
	wire(t, ctx, metalID, s2, 2)
	wire(t, ctx, s1, coll, 0)
	wire(t, ctx, s2, coll, 1)
	wire(t, ctx, coll, sceneID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	compiled := s.Compiled()

	require.Len(t, compiled.Textures, 1)
	require.Len(t, compiled.Materials, 1)
	require.Len(t, compiled.Spheres, 2)
	assert.Equal(t, scene.MaterialMetal, compiled.Materials[0].Kind)
	assert.Equal(t, uint32(0), compiled.Materials[0].Albedo)
	assert.Equal(t, uint32(0), compiled.Spheres[0].MaterialIdx)
	assert.Equal(t, uint32(0), compiled.Spheres[1].MaterialIdx)
	assert.Equal(t, []graph.NodeID{texID, metalID, s1, s2, coll}, s.Tracked())
}

func TestTextureReusedAcrossRecompiles(t *testing.T) {
	ctx := newTestContext(t, loader.WithCache(false))
	path := filepath.Join(t.TempDir(), "tile.png")
	writePNG(t, path, color.Gray{Y: 200})

	tex := New(KindTexture)
	tex.Texture.Path = path
	texID := ctx.Graph.Insert(tex)
	lamID := ctx.Graph.Insert(New(KindLambertian))
	sphereID := ctx.Graph.Insert(New(KindSphere))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, texID, lamID, 1)
	wire(t, ctx, lamID, sphereID, 2)
	wire(t, ctx, sphereID, sceneID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	first := s.Compiled().Textures[0].Pixels

	s.MarkDirty(scene.DirtyAll)
	_, err = ctx.Recalculate(sceneID)
	require.NoError(t, err)

	assert.Equal(t, 1, ctx.Loader.DecodeCount())
	assert.Same(t, &first[0], &s.Compiled().Textures[0].Pixels[0])

	tex.Texture.Revision++
	require.NoError(t, ctx.Changed(texID))
	_, err = ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.Loader.DecodeCount())
}

func TestFailedCompileKeepsPreviousScene(t *testing.T) {
	ctx := newTestContext(t, loader.WithCache(false))
	path := filepath.Join(t.TempDir(), "tile.png")
	writePNG(t, path, color.Gray{Y: 200})

	tex := New(KindTexture)
	tex.Texture.Path = path
	texID := ctx.Graph.Insert(tex)
	lamID := ctx.Graph.Insert(New(KindLambertian))
	sphereID := ctx.Graph.Insert(New(KindSphere))
	collID := ctx.Graph.Insert(New(KindCollection))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, texID, lamID, 1)
	wire(t, ctx, lamID, sphereID, 2)
	wire(t, ctx, sphereID, collID, 0)
	wire(t, ctx, collID, sceneID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	first := s.Compiled().Textures[0].Pixels

	bad := New(KindSphere)
	bad.Sphere.Material.Set(&texID)
	badID := ctx.Graph.Insert(bad)
	wire(t, ctx, badID, collID, 1)
	s.MarkDirty(scene.DirtyAll)

	_, err = ctx.Recalculate(sceneID)
	require.ErrorIs(t, err, ErrUnexpectedNode)
	assert.False(t, s.Flags().IsClean())
	require.Len(t, s.Compiled().Spheres, 1)
	require.Len(t, s.Compiled().Textures, 1)
	assert.Same(t, &first[0], &s.Compiled().Textures[0].Pixels[0])

	bad.Sphere.Material.Reset()
	result, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	assert.Equal(t, Recalculated, result)
	assert.Len(t, s.Compiled().Spheres, 2)
	assert.Equal(t, 1, ctx.Loader.DecodeCount())
	assert.Same(t, &first[0], &s.Compiled().Textures[0].Pixels[0])
}

func TestMissingTextureUsesPlaceholder(t *testing.T) {
	ctx := newTestContext(t)
	tex := New(KindTexture)
	tex.Texture.Path = filepath.Join(t.TempDir(), "missing.png")
	texID := ctx.Graph.Insert(tex)
	emID := ctx.Graph.Insert(New(KindEmissive))
	sphereID := ctx.Graph.Insert(New(KindSphere))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, texID, emID, 1)
	wire(t, ctx, emID, sphereID, 2)
	wire(t, ctx, sphereID, sceneID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	require.Len(t, s.Compiled().Textures, 1)
	assert.Equal(t, [3]float32(common.ColorMagenta), s.Compiled().Textures[0].Pixels[0])
	assert.Equal(t, []uint32{0}, s.Compiled().Lights())
}

func TestSubscriptionsAreNotDuplicated(t *testing.T) {
	ctx := newTestContext(t)
	sphere := New(KindSphere)
	sphereID := ctx.Graph.Insert(sphere)
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, sphereID, sceneID, 0)

	for i := 0; i < 3; i++ {
		s, _ := ctx.Scene(sceneID)
		s.MarkDirty(scene.DirtyAll)
		_, err := ctx.Recalculate(sceneID)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, sphere.Subscriptions().Len())
	assert.Equal(t, 1, ctx.Notify(sphereID))
}

func TestRemovedSubscriberUnsubscribes(t *testing.T) {
	ctx := newTestContext(t)
	sphere := New(KindSphere)
	sphereID := ctx.Graph.Insert(sphere)
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, sphereID, sceneID, 0)
	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)

	ctx.Graph.Remove(sceneID)
	assert.Equal(t, 1, ctx.Notify(sphereID))
	assert.Zero(t, sphere.Subscriptions().Len())
}

func TestSelfReferentialCollectionCompiles(t *testing.T) {
	ctx := newTestContext(t)
	collID := ctx.Graph.Insert(New(KindCollection))
	sphereID := ctx.Graph.Insert(New(KindSphere))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, collID, collID, 0)
	wire(t, ctx, sphereID, collID, 1)
	wire(t, ctx, collID, sceneID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	assert.Len(t, s.Compiled().Spheres, 1)
}

func TestCollectionDisconnectDirtiesScene(t *testing.T) {
	ctx := newTestContext(t)
	collID := ctx.Graph.Insert(New(KindCollection))
	sphereID := ctx.Graph.Insert(New(KindSphere))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, sphereID, collID, 0)
	wire(t, ctx, collID, sceneID, 0)
	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)

	unwire(t, ctx, sphereID, collID, 0)
	s, _ := ctx.Scene(sceneID)
	assert.Equal(t, scene.DirtyAll, s.Flags())
	coll, _ := ctx.Node(collID)
	assert.Empty(t, coll.Collection.Nodes)
	assert.Len(t, coll.Inputs(), 1)
}

func TestInputsAndOutputsPerKind(t *testing.T) {
	for _, k := range Kinds() {
		n := New(k)
		require.NoError(t, n.validate(), k.String())
		assert.Equal(t, k.String(), n.Title())
		if k == KindOutput {
			assert.Empty(t, n.Outputs())
		} else {
			assert.Len(t, n.Outputs(), 1, k.String())
		}
	}
	assert.Len(t, New(KindCamera).Inputs(), 7)
	assert.True(t, New(KindSphere).Inputs()[2].Intersects(New(KindCheckerboard).Outputs()[0]))
	assert.False(t, New(KindSphere).Inputs()[2].Intersects(New(KindTexture).Outputs()[0]))
}

func TestNodeJSONRoundTrip(t *testing.T) {
	sphere := New(KindSphere)
	*sphere.Sphere.Radius.AsMut() = 3
	sphere.Sphere.Radius.Set(9)
	sphere.Sphere.Inline = New(KindMetal)
	*sphere.Sphere.Inline.Metal.Fuzz.AsMut() = 0.25

	data, err := json.Marshal(sphere)
	require.NoError(t, err)

	var restored Node
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, KindSphere, restored.Kind)
	assert.Equal(t, float32(3), restored.Sphere.Radius.Get())
	require.NotNil(t, restored.Sphere.Inline)
	assert.Equal(t, float32(0.25), restored.Sphere.Inline.Metal.Fuzz.Get())

	var sceneNode Node
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"Scene","scene":{"data":null}}`), &sceneNode))
	assert.Equal(t, scene.DirtyInit, sceneNode.Scene.Flags())

	var broken Node
	err = json.Unmarshal([]byte(`{"kind":"Camera"}`), &broken)
	assert.ErrorIs(t, err, ErrMissingPayload)
}

func TestCameraOrientation(t *testing.T) {
	cam := New(KindCamera).Camera
	forward, up := cam.Orientation()
	assert.InDelta(t, 1, forward.Z(), 1e-5)
	assert.InDelta(t, 1, up.Y(), 1e-5)

	*cam.Pitch.AsMut() = 120
	forward, up = cam.Orientation()
	assert.InDelta(t, 0, forward.Dot(up), 1e-4)
	assert.Less(t, forward.Y(), float32(1))
}

func TestRestoreReplaysWires(t *testing.T) {
	ctx := newTestContext(t)
	num := New(KindNumber)
	num.Number.Value = 7
	numID := ctx.Graph.Insert(num)
	sphereID := ctx.Graph.Insert(New(KindSphere))
	collID := ctx.Graph.Insert(New(KindCollection))
	sceneID := ctx.Graph.Insert(New(KindScene))
	wire(t, ctx, numID, sphereID, 1)
	wire(t, ctx, sphereID, collID, 0)
	wire(t, ctx, sphereID, collID, 1)
	wire(t, ctx, collID, sceneID, 0)

	data, err := json.Marshal(ctx.Graph)
	require.NoError(t, err)
	g := graph.New[*Node]()
	require.NoError(t, json.Unmarshal(data, g))

	restored, err := Restore(g, loader.NewLoader(loader.BackendTypeImage))
	require.NoError(t, err)
	sphere, err := restored.Node(sphereID)
	require.NoError(t, err)
	assert.Equal(t, float32(7), sphere.Sphere.Radius.Get())
	coll, err := restored.Node(collID)
	require.NoError(t, err)
	assert.Len(t, coll.Collection.Nodes, 2)

	_, err = restored.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := restored.Scene(sceneID)
	require.Len(t, s.Compiled().Spheres, 1)
	assert.Equal(t, float32(7), s.Compiled().Spheres[0].Radius)
}

func TestRestoreReportsBrokenWire(t *testing.T) {
	g := graph.New[*Node]()
	numID := g.Insert(New(KindNumber))
	cameraID := g.Insert(New(KindCamera))
	require.True(t, g.Connect(graph.OutPinID{Node: numID}, graph.InPinID{Node: cameraID, Input: 6}))

	ctx, err := Restore(g, loader.NewLoader(loader.BackendTypeImage))
	require.Error(t, err)
	assert.Equal(t, 2, ctx.Graph.Len())
}

func TestDetachResetsInputs(t *testing.T) {
	ctx := newTestContext(t)
	num := New(KindNumber)
	num.Number.Value = 4
	numID := ctx.Graph.Insert(num)
	sphere := New(KindSphere)
	sphereID := ctx.Graph.Insert(sphere)
	collID := ctx.Graph.Insert(New(KindCollection))
	wire(t, ctx, numID, sphereID, 1)
	wire(t, ctx, sphereID, collID, 0)

	sphere.Detach()
	assert.Equal(t, float32(1), sphere.Sphere.Radius.Get())

	coll, _ := ctx.Node(collID)
	coll.Detach()
	assert.Empty(t, coll.Collection.Nodes)
	assert.Len(t, coll.Inputs(), 1)
}

func TestSceneTexturesDecodedOnce(t *testing.T) {
	ctx := newTestContext(t, loader.WithDecodeWorkers(2))
	dir := t.TempDir()
	collID := ctx.Graph.Insert(New(KindCollection))
	sceneID := ctx.Graph.Insert(New(KindScene))
	for i, shade := range []uint8{50, 150, 250} {
		path := filepath.Join(dir, fmt.Sprintf("tex%d.png", i))
		writePNG(t, path, color.Gray{Y: shade})
		tex := New(KindTexture)
		tex.Texture.Path = path
		texID := ctx.Graph.Insert(tex)
		lamID := ctx.Graph.Insert(New(KindLambertian))
		sphereID := ctx.Graph.Insert(New(KindSphere))
		wire(t, ctx, texID, lamID, 1)
		wire(t, ctx, lamID, sphereID, 2)
		wire(t, ctx, sphereID, collID, i)
	}
	wire(t, ctx, collID, sceneID, 0)

	_, err := ctx.Recalculate(sceneID)
	require.NoError(t, err)
	s, _ := ctx.Scene(sceneID)
	assert.Len(t, s.Compiled().Textures, 3)
	assert.Len(t, s.Compiled().Spheres, 3)
	assert.Equal(t, 3, ctx.Loader.DecodeCount())
}
