package camera

import (
	"sync"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

// controllerImpl is the single implementation of Controller.
type controllerImpl struct {
	mu *sync.Mutex

	moveSpeed        float32
	boostMultiplier  float32
	mouseSensitivity float32
	pitchLimit       float32

	zoomSpeed float32
	minVfov   float32
	maxVfov   float32
}

var _ Controller = &controllerImpl{}

// NewController creates a fly-through controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerOption) Controller {
	c := &controllerImpl{
		mu: &sync.Mutex{},

		moveSpeed:        2.0,
		boostMultiplier:  4.0,
		mouseSensitivity: 0.2,
		pitchLimit:       89.0,

		zoomSpeed: 2.0,
		minVfov:   1.0,
		maxVfov:   90.0,
	}

	for _, option := range options {
		option(c)
	}
	return c
}

func (c *controllerImpl) Update(cam *node.CameraNode, in Input) bool {
	if cam == nil || in.Idle() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false

	if in.Dragging && (in.MouseDelta[0] != 0 || in.MouseDelta[1] != 0) {
		yaw := cam.Yaw.AsMut()
		pitch := cam.Pitch.AsMut()
		// dragging right turns toward the camera's right, which is -yaw
		*yaw -= in.MouseDelta[0] * c.mouseSensitivity
		*pitch = common.Clamp(*pitch-in.MouseDelta[1]*c.mouseSensitivity, -c.pitchLimit, c.pitchLimit)
		changed = true
	}

	if offset := c.translation(cam, in); offset.Len() > 0 {
		pos := cam.Position.AsMut()
		*pos = pos.Add(offset)
		changed = true
	}

	if in.Scroll != 0 {
		vfov := cam.Vfov.AsMut()
		next := common.Clamp(*vfov-in.Scroll*c.zoomSpeed, c.minVfov, c.maxVfov)
		if next != *vfov {
			*vfov = next
			changed = true
		}
	}
	return changed
}

// translation returns the world-space offset for this frame. Forward and right follow the
// camera's yaw and pitch; up and down follow world Y.
// Caller must hold the mutex.
func (c *controllerImpl) translation(cam *node.CameraNode, in Input) mgl32.Vec3 {
	forward, _ := cam.Orientation()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	var dir mgl32.Vec3
	if in.Forward {
		dir = dir.Add(forward)
	}
	if in.Back {
		dir = dir.Sub(forward)
	}
	if in.Right {
		dir = dir.Add(right)
	}
	if in.Left {
		dir = dir.Sub(right)
	}
	if in.Up {
		dir = dir.Add(mgl32.Vec3{0, 1, 0})
	}
	if in.Down {
		dir = dir.Sub(mgl32.Vec3{0, 1, 0})
	}
	if dir.Len() == 0 {
		return dir
	}

	speed := c.moveSpeed
	if in.Boost {
		speed *= c.boostMultiplier
	}
	return dir.Normalize().Mul(speed * in.Dt)
}

func (c *controllerImpl) MoveSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moveSpeed
}

func (c *controllerImpl) SetMoveSpeed(speed float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveSpeed = speed
}

func (c *controllerImpl) BoostMultiplier() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boostMultiplier
}

func (c *controllerImpl) MouseSensitivity() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mouseSensitivity
}

func (c *controllerImpl) PitchLimit() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitchLimit
}

func (c *controllerImpl) ZoomSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoomSpeed
}

func (c *controllerImpl) VfovBounds() (min, max float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minVfov, c.maxVfov
}
