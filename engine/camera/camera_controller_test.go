package camera

import (
	"testing"

	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCamera(t *testing.T) *node.CameraNode {
	t.Helper()
	n := node.New(node.KindCamera)
	require.NotNil(t, n.Camera)
	return n.Camera
}

func TestIdleInputChangesNothing(t *testing.T) {
	cam := newCamera(t)
	before := *cam
	c := NewController()

	assert.False(t, c.Update(cam, Input{Dt: 0.016}))
	assert.False(t, c.Update(cam, Input{MouseDelta: [2]float32{5, 5}, Dt: 0.016}))
	assert.Equal(t, before.Position.Get(), cam.Position.Get())
	assert.Equal(t, before.Yaw.Get(), cam.Yaw.Get())
}

func TestForwardMovesAlongView(t *testing.T) {
	cam := newCamera(t)
	c := NewController(WithMoveSpeed(2))

	require.True(t, c.Update(cam, Input{Forward: true, Dt: 0.5}))
	assert.InDeltaSlice(t, []float32{0, 1, -4}, cam.Position.Get()[:], 1e-5)

	require.True(t, c.Update(cam, Input{Forward: true, Boost: true, Dt: 0.5}))
	assert.InDeltaSlice(t, []float32{0, 1, 0}, cam.Position.Get()[:], 1e-5)
}

func TestStrafeAndVertical(t *testing.T) {
	cam := newCamera(t)
	c := NewController(WithMoveSpeed(1))

	require.True(t, c.Update(cam, Input{Right: true, Dt: 1}))
	// looking down +Z with Y up, the camera's right is -X
	assert.InDeltaSlice(t, []float32{-1, 1, -5}, cam.Position.Get()[:], 1e-5)

	require.True(t, c.Update(cam, Input{Up: true, Dt: 1}))
	assert.InDeltaSlice(t, []float32{-1, 2, -5}, cam.Position.Get()[:], 1e-5)

	assert.False(t, c.Update(cam, Input{Left: true, Right: true, Dt: 1}))
}

func TestDragTurnsAndClampsPitch(t *testing.T) {
	cam := newCamera(t)
	c := NewController(WithMouseSensitivity(1), WithPitchLimit(80))

	require.True(t, c.Update(cam, Input{Dragging: true, MouseDelta: [2]float32{10, -200}}))
	assert.Equal(t, float32(-10), cam.Yaw.Get())
	assert.Equal(t, float32(80), cam.Pitch.Get())

	forward, _ := cam.Orientation()
	assert.Greater(t, forward.Y(), float32(0.9))
}

func TestScrollZoomsWithinBounds(t *testing.T) {
	cam := newCamera(t)
	c := NewController(WithZoomSpeed(10), WithVfovBounds(20, 60))

	require.True(t, c.Update(cam, Input{Scroll: 1}))
	assert.Equal(t, float32(35), cam.Vfov.Get())

	require.True(t, c.Update(cam, Input{Scroll: 5}))
	assert.Equal(t, float32(20), cam.Vfov.Get())
	assert.False(t, c.Update(cam, Input{Scroll: 1}))

	require.True(t, c.Update(cam, Input{Scroll: -10}))
	assert.Equal(t, float32(60), cam.Vfov.Get())
}

func TestUpdateShadowsConnectedPins(t *testing.T) {
	cam := newCamera(t)
	cam.Position.Set(mgl32.Vec3{0, 0, 0})
	c := NewController(WithMoveSpeed(1))

	require.True(t, c.Update(cam, Input{Up: true, Dt: 1}))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, cam.Position.Get())
	assert.Equal(t, mgl32.Vec3{0, 1, -5}, cam.Position.Initial)
}
